package parser

import "strings"

// DialectParser is the capability every dialect implements: a cheap predicate
// used by format detection and a full parse. Parse never fails; everything
// recoverable lands in the report as diagnostics.
type DialectParser interface {
	Format() Format
	CanParse(input string) bool
	Parse(input string) *Result
}

// Detection priority. SPM metadata has the most distinctive surface (JSON,
// tree glyphs), the Swift build log has more specific markers than Xcode, and
// Xcode is the permissive fallback for xcodebuild invocations.
func dialects() []DialectParser {
	return []DialectParser{
		NewSPMParser(),
		NewSwiftParser(),
		NewXcodeParser(),
	}
}

// Detect classifies the input without parsing it. Empty or whitespace-only
// input is unknown.
func Detect(input string) Format {
	if strings.TrimSpace(input) == "" {
		return FormatUnknown
	}
	for _, p := range dialects() {
		if p.CanParse(input) {
			return p.Format()
		}
	}
	return FormatUnknown
}

// Parse runs format detection and hands the input to the first dialect whose
// predicate matches. When nothing matches, the Xcode parser runs as the
// best-effort fallback.
func Parse(input string) *Result {
	if strings.TrimSpace(input) == "" {
		r := newResult(FormatUnknown)
		r.finalize()
		return r
	}

	ps := dialects()
	for _, p := range ps {
		if p.CanParse(input) {
			return p.Parse(input)
		}
	}
	return ps[len(ps)-1].Parse(input)
}

// ParseAs forces a specific dialect, bypassing detection. FormatUnknown (or
// any unrecognized value) falls back to auto detection.
func ParseAs(input string, format Format) *Result {
	for _, p := range dialects() {
		if p.Format() == format {
			return p.Parse(input)
		}
	}
	return Parse(input)
}

// splitLines breaks the raw input into lines, tolerating CRLF endings.
func splitLines(input string) []string {
	lines := strings.Split(input, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
