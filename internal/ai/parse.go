package ai

import (
	"strconv"
	"strings"
)

// Model replies are requested in a labeled line format. Each extractor below
// pulls one field and defaults independently on absence, so one missing or
// mangled label never discards the fields that did parse.

// labeledLine returns the text after "LABEL:" on the first line carrying the
// label (case-insensitive).
func labeledLine(text, label string) (string, bool) {
	prefix := strings.ToUpper(label) + ":"
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < len(prefix) {
			continue
		}
		if strings.EqualFold(trimmed[:len(prefix)], prefix) {
			return strings.TrimSpace(trimmed[len(prefix):]), true
		}
	}
	return "", false
}

// labeledList splits a labeled line on semicolons (falling back to commas)
// and caps the result. Absent label or empty value yields an empty list.
func labeledList(text, label string, max int) []string {
	value, ok := labeledLine(text, label)
	if !ok || value == "" || strings.EqualFold(value, "none") {
		return nil
	}
	sep := ";"
	if !strings.Contains(value, ";") {
		sep = ","
	}
	var out []string
	for _, part := range strings.Split(value, sep) {
		part = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(part), "-•* "))
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == max {
			break
		}
	}
	return out
}

// labeledInt parses a labeled integer, tolerating trailing prose ("85%",
// "3 snippets"), and returns def when absent or unparseable.
func labeledInt(text, label string, def int) int {
	value, ok := labeledLine(text, label)
	if !ok {
		return def
	}
	return leadingInt(value, def)
}

// leadingInt extracts the integer at the start of s, or def.
func leadingInt(s string, def int) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return def
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return def
	}
	return n
}

// clampScore bounds a 0-100 score.
func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
