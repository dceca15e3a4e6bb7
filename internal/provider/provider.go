// Package provider maps raw API-key strings to AI vendors and constructs the
// matching completion adapter. Detection is format-based: the key itself
// carries enough shape to identify the vendor, so users paste one string and
// the rest is inferred.
package provider

import (
	"strings"
	"time"
)

// VendorID identifies an AI completion vendor.
type VendorID string

const (
	VendorNone      VendorID = ""
	VendorAnthropic VendorID = "anthropic"
	VendorGroq      VendorID = "groq"
	VendorGemini    VendorID = "gemini"
	VendorMistral   VendorID = "mistral"
	VendorOpenAI    VendorID = "openai"
)

// defaultTimeout bounds every adapter call that arrives without a deadline.
const defaultTimeout = 60 * time.Second

// detectRule is one entry in the ordered detection table. Order matters:
// "sk-ant-" must be tested before the shorter "sk-" prefix, and the bare
// 32-char form before anything that would otherwise swallow it.
type detectRule struct {
	vendor VendorID
	match  func(key string) bool
}

var detectRules = []detectRule{
	{VendorAnthropic, func(k string) bool { return strings.HasPrefix(k, "sk-ant-") }},
	{VendorGroq, func(k string) bool { return strings.HasPrefix(k, "gsk_") }},
	{VendorGemini, func(k string) bool { return strings.HasPrefix(k, "AIza") }},
	{VendorMistral, isBareMistralKey},
	{VendorOpenAI, func(k string) bool { return strings.HasPrefix(k, "sk-") }},
}

func isBareMistralKey(key string) bool {
	if len(key) != 32 {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Detect classifies an API key by format. It evaluates the detection table in
// order and returns the first matching vendor, or VendorNone when nothing
// matches. It is total: any string, including empty, yields a result.
func Detect(key string) VendorID {
	key = strings.TrimSpace(key)
	if key == "" {
		return VendorNone
	}
	for _, rule := range detectRules {
		if rule.match(key) {
			return rule.vendor
		}
	}
	return VendorNone
}

// New detects the vendor for key and returns an adapter bound to it, or nil
// when the key format is not recognized. Construction performs no network
// I/O; the adapter connects lazily on the first Chat call.
func New(key string) Adapter {
	switch Detect(key) {
	case VendorAnthropic:
		return newAnthropicAdapter(key)
	case VendorGroq:
		return newGroqAdapter(key)
	case VendorGemini:
		return newGeminiAdapter(key)
	case VendorMistral:
		return newMistralAdapter(key)
	case VendorOpenAI:
		return newOpenAIAdapter(key)
	default:
		return nil
	}
}

// VendorInfo is display metadata for a vendor.
type VendorInfo struct {
	Label  string
	Glyph  string
	Accent string // hex color
	Models []string
}

var vendorInfos = map[VendorID]VendorInfo{
	VendorAnthropic: {
		Label:  "Anthropic",
		Glyph:  "◆",
		Accent: "#D97757",
		Models: []string{"claude-sonnet-4-5-20250514", "claude-3-5-haiku-20241022"},
	},
	VendorGroq: {
		Label:  "Groq",
		Glyph:  "●",
		Accent: "#F55036",
		Models: []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant", "mixtral-8x7b-32768"},
	},
	VendorGemini: {
		Label:  "Google Gemini",
		Glyph:  "✦",
		Accent: "#4285F4",
		Models: []string{"gemini-2.0-flash", "gemini-1.5-pro"},
	},
	VendorMistral: {
		Label:  "Mistral",
		Glyph:  "▲",
		Accent: "#FF7000",
		Models: []string{"mistral-small-latest", "mistral-large-latest"},
	},
	VendorOpenAI: {
		Label:  "OpenAI",
		Glyph:  "○",
		Accent: "#10A37F",
		Models: []string{"gpt-4o-mini", "gpt-4o"},
	},
}

var unknownVendorInfo = VendorInfo{
	Label:  "Unknown",
	Glyph:  "?",
	Accent: "#808080",
}

// Info returns display metadata for a vendor. Unknown ids get the "Unknown"
// sentinel, never an error.
func Info(v VendorID) VendorInfo {
	if info, ok := vendorInfos[v]; ok {
		return info
	}
	return unknownVendorInfo
}

// Vendors lists the known vendors in detection-table order.
func Vendors() []VendorID {
	out := make([]VendorID, 0, len(detectRules))
	for _, rule := range detectRules {
		out = append(out, rule.vendor)
	}
	return out
}
