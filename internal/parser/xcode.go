package parser

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// XcodeParser handles raw xcodebuild output: `** BUILD SUCCEEDED **` style
// sentinels, `=== BUILD TARGET ===` sections, and compiler diagnostics.
type XcodeParser struct{}

func NewXcodeParser() *XcodeParser {
	return &XcodeParser{}
}

func (p *XcodeParser) Format() Format { return FormatXcode }

// Markers that identify xcodebuild output. Matched case-insensitively except
// the linker step `Ld `, whose lowercase form is too common in prose.
var xcodeMarkers = []string{
	"xcodebuild",
	"build succeeded",
	"build failed",
	"** build",
	"=== build target",
	"build settings from",
	"compileswift",
	"swiftcompile",
	"codesign",
	"processinfoplistfile",
}

// Explicit duration patterns, probed in order. The first match anywhere in the
// log wins and is never overwritten.
var xcodeDurationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)completed in ([0-9.]+)s(?:\s|$)`),
	regexp.MustCompile(`(?i)completed in ([0-9.]+) second`),
	regexp.MustCompile(`(?i)\(([0-9.]+) seconds?\)`),
	regexp.MustCompile(`(?i)\(([0-9.]+)s\)`),
}

func (p *XcodeParser) CanParse(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}
	lower := strings.ToLower(input)
	for _, m := range xcodeMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return strings.Contains(input, "Ld ")
}

func (p *XcodeParser) Parse(input string) *Result {
	result := newResult(FormatXcode)

	for _, raw := range splitLines(input) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		p.markStart(result, line, lower)

		// Duration before status, so an explicit duration on a status line is
		// never clobbered by the computed one.
		p.extractDuration(result, line)
		p.extractStatus(result, line, lower)
		p.extractDiagnostic(result, line, lower)
		p.extractCompiledFile(result, line)

		if strings.Contains(line, "=== BUILD TARGET") || strings.Contains(line, "Build target") {
			result.Metrics.TargetCount++
		}
	}

	if result.Status == StatusUnknown {
		if result.Metrics.ErrorCount == 0 {
			result.Status = StatusSuccess
		} else {
			result.Status = StatusFailed
		}
	}
	result.finalize()
	return result
}

// markStart stamps the wall clock on the first line that looks like the start
// of a build. Only used to derive a duration when the log has no explicit one.
func (p *XcodeParser) markStart(result *Result, line, lower string) {
	if result.Timing.StartTime != nil {
		return
	}
	if strings.Contains(lower, "build start") ||
		strings.HasPrefix(line, "Build settings") ||
		strings.HasPrefix(line, "Build target") ||
		strings.Contains(lower, "xcodebuild") {
		now := time.Now()
		result.Timing.StartTime = &now
	}
}

func (p *XcodeParser) extractDuration(result *Result, line string) {
	if result.Timing.TotalDuration > 0 {
		return
	}
	for _, re := range xcodeDurationPatterns {
		if m := re.FindStringSubmatch(line); m != nil {
			if secs, err := strconv.ParseFloat(m[1], 64); err == nil {
				result.Timing.TotalDuration = secs
				return
			}
		}
	}
}

func (p *XcodeParser) extractStatus(result *Result, line, lower string) {
	var status Status
	switch {
	case strings.Contains(lower, "build succeeded") || line == "** BUILD SUCCEEDED **":
		status = StatusSuccess
	case strings.Contains(lower, "build failed") || line == "** BUILD FAILED **":
		status = StatusFailed
	default:
		return
	}

	result.Status = status
	now := time.Now()
	result.Timing.EndTime = &now
	if result.Timing.TotalDuration == 0 && result.Timing.StartTime != nil {
		result.Timing.TotalDuration = now.Sub(*result.Timing.StartTime).Seconds()
	}
}

func (p *XcodeParser) extractDiagnostic(result *Result, line, lower string) {
	var severity Severity
	switch {
	case strings.Contains(lower, ": error:") || strings.Contains(lower, " error: "):
		severity = SeverityError
	case strings.Contains(lower, ": warning:") || strings.Contains(lower, " warning: "):
		severity = SeverityWarning
	case strings.Contains(lower, ": note:") || strings.Contains(lower, " note: "):
		severity = SeverityInfo
	default:
		return
	}
	result.addDiagnostic(parseDiagnosticLine(line, severity, CategoryBuild))
}

func (p *XcodeParser) extractCompiledFile(result *Result, line string) {
	stripped := line
	if idx := strings.Index(stripped, " (in target"); idx >= 0 {
		stripped = stripped[:idx]
	}

	qualifies := (strings.Contains(line, "Compiling") && strings.Contains(line, ".swift")) ||
		(containsAny(stripped, "CompileSwift", "SwiftCompile") && strings.Contains(stripped, ".swift")) ||
		(strings.HasSuffix(stripped, ".swift") && strings.Contains(stripped, "/"))
	if !qualifies {
		return
	}

	fields := strings.Fields(stripped)
	for i := len(fields) - 1; i >= 0; i-- {
		if strings.HasSuffix(fields[i], ".swift") {
			result.Metrics.addCompiledFile(filepath.Base(fields[i]))
			return
		}
	}
}
