package parser

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// SwiftParser handles `swift build` / `swift test` output: `Compiling` and
// `Linking` progress lines, `Build complete!` sentinels, and compiler
// diagnostics.
type SwiftParser struct{}

func NewSwiftParser() *SwiftParser {
	return &SwiftParser{}
}

func (p *SwiftParser) Format() Format { return FormatSwift }

// Case-sensitive markers for swift-driver and SwiftPM build output.
var swiftMarkers = []string{
	"Swift Compiler",
	"swift build",
	"swift test",
	"Apple Swift version",
	"Building for",
	"Compiling Swift Module",
	"swift-package",
	"Fetching https://",
	"Cloning https://",
	"Resolving https://",
	"SwiftPM",
	".build/checkouts",
}

// Progress lines xcodebuild emits too. These only identify a swift build when
// the Xcode predicate stays quiet, as do bare compiler diagnostics.
var swiftWeakMarkers = []string{
	"Compiling ",
	"Linking ",
}

// Duration patterns, probed in order on every line. The maximum value seen
// anywhere in the input wins, unlike the Xcode parser's first-match rule.
var swiftDurationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\(([0-9.]+)s\)`),
	regexp.MustCompile(`\[([0-9.]+)s\]`),
	regexp.MustCompile(`completed.*?([0-9.]+)s`),
	regexp.MustCompile(`([0-9]+\.[0-9]+)s(?:\s|$)`),
	regexp.MustCompile(`([0-9]+)s(?:\s|$)`),
}

func (p *SwiftParser) CanParse(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}
	for _, m := range swiftMarkers {
		if strings.Contains(input, m) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(input), "build complete!") {
		return true
	}
	if containsAny(input, swiftWeakMarkers...) || containsAny(input, ": error:", ": warning:") {
		return !NewXcodeParser().CanParse(input)
	}
	return false
}

func (p *SwiftParser) Parse(input string) *Result {
	result := newResult(FormatSwift)
	linkTargets := map[string]bool{}

	for i, raw := range splitLines(input) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		if result.Status == StatusUnknown {
			if strings.Contains(lower, "build failed") {
				result.Status = StatusFailed
			} else if strings.Contains(lower, "build complete") || strings.Contains(line, "BUILD SUCCEEDED") {
				result.Status = StatusSuccess
			}
		}

		p.extractDiagnostic(result, line, lower, i+1)
		p.extractCompiledFile(result, line)
		p.extractDuration(result, line)

		if rest, ok := strings.CutPrefix(line, "Linking "); ok {
			if fields := strings.Fields(rest); len(fields) > 0 {
				linkTargets[fields[0]] = true
			}
		}
	}

	result.Metrics.TargetCount = len(linkTargets)

	if result.Metrics.ErrorCount > 0 {
		result.Status = StatusFailed
	} else if result.Status == StatusUnknown {
		result.Status = StatusSuccess
	}
	result.finalize()
	return result
}

func (p *SwiftParser) extractDiagnostic(result *Result, line, lower string, lineIndex int) {
	var severity Severity
	switch {
	case strings.Contains(lower, ": error:") || strings.HasPrefix(lower, "error:"):
		severity = SeverityError
	case strings.Contains(lower, ": warning:") || strings.HasPrefix(lower, "warning:"):
		severity = SeverityWarning
	case strings.Contains(lower, ": note:") || strings.HasPrefix(lower, "note:"):
		severity = SeverityInfo
	default:
		return
	}

	d := parseDiagnosticLine(line, severity, CategoryCompilation)
	if d.Line == 0 {
		// No source position in the diagnostic; fall back to the position in
		// the log stream itself.
		d.Line = lineIndex
	}
	result.addDiagnostic(d)
}

func (p *SwiftParser) extractCompiledFile(result *Result, line string) {
	if !strings.HasPrefix(line, "Compiling") || !strings.Contains(line, ".swift") {
		return
	}
	for _, field := range strings.Fields(line) {
		if strings.HasSuffix(field, ".swift") {
			result.Metrics.addCompiledFile(filepath.Base(field))
			return
		}
	}
}

func (p *SwiftParser) extractDuration(result *Result, line string) {
	for _, re := range swiftDurationPatterns {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if secs, err := strconv.ParseFloat(m[1], 64); err == nil && secs > result.Timing.TotalDuration {
			result.Timing.TotalDuration = secs
		}
		return
	}
}
