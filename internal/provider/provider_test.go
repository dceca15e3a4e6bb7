package provider

import (
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want VendorID
	}{
		{"anthropic prefix", "sk-ant-abc123", VendorAnthropic},
		{"groq prefix", "gsk_xyz", VendorGroq},
		{"gemini prefix", "AIzaSyB1234567890", VendorGemini},
		{"bare 32-char alphanumeric", "abcdefghijklmnopqrstuvwxyz123456", VendorMistral},
		{"openai prefix", "sk-proj-1234567890", VendorOpenAI},
		{"plain sk- prefix", "sk-1234", VendorOpenAI},
		{"unrecognized", "notarealkey", VendorNone},
		{"empty", "", VendorNone},
		{"whitespace only", "   ", VendorNone},
		{"31 chars alphanumeric", "abcdefghijklmnopqrstuvwxyz12345", VendorNone},
		{"33 chars alphanumeric", "abcdefghijklmnopqrstuvwxyz1234567", VendorNone},
		{"32 chars with symbol", "abcdefghijklmnopqrstuvwxyz12345_", VendorNone},
		{"leading whitespace trimmed", "  sk-ant-abc123  ", VendorAnthropic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.key); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

// The sk-ant- prefix is itself 7 chars of an sk- key; rule order must classify
// it as Anthropic, never OpenAI.
func TestDetectRuleOrder(t *testing.T) {
	if got := Detect("sk-ant-api03-deadbeef"); got != VendorAnthropic {
		t.Fatalf("sk-ant key classified as %q, want anthropic", got)
	}
	// A 32-char key starting with sk- is not bare alphanumeric (contains '-'),
	// so it falls through to the openai rule.
	key := "sk-" + strings.Repeat("a", 29)
	if len(key) != 32 {
		t.Fatalf("test key length = %d, want 32", len(key))
	}
	if got := Detect(key); got != VendorOpenAI {
		t.Errorf("Detect(%q) = %q, want openai", key, got)
	}
}

func TestDetectNeverPanics(t *testing.T) {
	inputs := []string{"", " ", "\x00", "sk-", "gsk_", "AIza", strings.Repeat("x", 4096)}
	for _, in := range inputs {
		_ = Detect(in) // must be total
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		key    string
		vendor VendorID
	}{
		{"sk-ant-abc123", VendorAnthropic},
		{"gsk_xyz", VendorGroq},
		{"AIzaSyB123", VendorGemini},
		{"ABCDEFGHIJKLMNOPQRSTUVWXYZ012345", VendorMistral},
		{"sk-openai123", VendorOpenAI},
	}
	for _, tt := range tests {
		a := New(tt.key)
		if a == nil {
			t.Fatalf("New(%q) = nil, want adapter", tt.key)
		}
		if a.Vendor() != tt.vendor {
			t.Errorf("New(%q).Vendor() = %q, want %q", tt.key, a.Vendor(), tt.vendor)
		}
		if a.Model() == "" {
			t.Errorf("New(%q) has no default model", tt.key)
		}
	}
}

// New returns nil exactly when Detect returns VendorNone.
func TestNewNilIffUndetected(t *testing.T) {
	for _, key := range []string{"notarealkey", "", "zzz"} {
		if Detect(key) != VendorNone {
			t.Fatalf("expected %q to be undetected", key)
		}
		if a := New(key); a != nil {
			t.Errorf("New(%q) = %v, want nil", key, a)
		}
	}
}

func TestInfo(t *testing.T) {
	for _, v := range Vendors() {
		info := Info(v)
		if info.Label == "" || info.Glyph == "" || info.Accent == "" {
			t.Errorf("Info(%q) incomplete: %+v", v, info)
		}
		if len(info.Models) == 0 {
			t.Errorf("Info(%q) has no candidate models", v)
		}
	}

	unknown := Info(VendorID("madeup"))
	if unknown.Label != "Unknown" {
		t.Errorf("Info(unknown).Label = %q, want Unknown sentinel", unknown.Label)
	}
	if Info(VendorNone).Label != "Unknown" {
		t.Error("Info(VendorNone) should return the Unknown sentinel")
	}
}

func TestSetModel(t *testing.T) {
	a := New("gsk_test")
	a.SetModel("llama-3.1-8b-instant")
	if a.Model() != "llama-3.1-8b-instant" {
		t.Errorf("Model() = %q after SetModel", a.Model())
	}
}
