package parser

import (
	"strconv"
	"strings"
)

// Severity markers recognized inside a diagnostic line, probed in order for
// the earliest occurrence. The colon-delimited forms are the compiler's
// `<file>:<line>:<col>: error: msg` shape (and tool prefixes such as
// `ld: error: ...`); the space-delimited forms cover tools that omit the
// location colon (`clang error: ...`).
var severityMarkers = []string{
	": error:",
	": warning:",
	": note:",
	" error: ",
	" warning: ",
	" note: ",
}

// Bare labels a diagnostic line may start with when it has no location.
var bareLabels = []string{"error:", "warning:", "note:"}

// parseDiagnosticLine splits a single log line of the shape
// `<location>: <severity>: <message>` into a Diagnostic. The severity is
// chosen by the caller; the line parser strips the label, splits the location
// into path/line/column, and classifies the category starting from
// defaultCategory.
func parseDiagnosticLine(line string, severity Severity, defaultCategory Category) Diagnostic {
	d := Diagnostic{Severity: severity, Category: defaultCategory}

	lower := strings.ToLower(line)

	markerAt := -1
	markerLen := 0
	for _, m := range severityMarkers {
		if idx := strings.Index(lower, m); idx >= 0 && (markerAt < 0 || idx < markerAt) {
			markerAt = idx
			markerLen = len(m)
		}
	}

	if markerAt < 0 {
		trimmed := strings.TrimSpace(line)
		lowerTrimmed := strings.ToLower(trimmed)
		for _, label := range bareLabels {
			if strings.HasPrefix(lowerTrimmed, label) {
				d.Message = strings.TrimSpace(trimmed[len(label):])
				d.Category = classifyCategory(d.Message, defaultCategory)
				return d
			}
		}
		d.Message = trimmed
		d.Category = classifyCategory(d.Message, defaultCategory)
		return d
	}

	d.Location = strings.TrimSpace(line[:markerAt])
	d.Message = strings.TrimSpace(line[markerAt+markerLen:])
	d.FilePath, d.Line, d.Column = splitLocation(d.Location)
	d.Category = classifyCategory(d.Message, defaultCategory)
	return d
}

// splitLocation breaks `<path>:<line>:<col>` into its parts. Windows drive
// letters (`C:\src\File.swift:3:1`) are detected by the colon in the second
// position and resolved by scanning integer suffixes from the right; POSIX
// locations split left to right.
func splitLocation(loc string) (file string, line, column int) {
	if loc == "" {
		return "", 0, 0
	}

	if len(loc) >= 2 && loc[1] == ':' {
		parts := strings.Split(loc, ":")
		nums := []int{}
		end := len(parts)
		for end > 1 && len(nums) < 2 {
			n, err := strconv.Atoi(strings.TrimSpace(parts[end-1]))
			if err != nil {
				break
			}
			nums = append(nums, n)
			end--
		}
		file = strings.Join(parts[:end], ":")
		switch len(nums) {
		case 1:
			line = nums[0]
		case 2:
			column = nums[0]
			line = nums[1]
		}
		return file, line, column
	}

	parts := strings.Split(loc, ":")
	file = parts[0]
	if len(parts) > 1 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			line = n
			if len(parts) > 2 {
				if c, err := strconv.Atoi(strings.TrimSpace(parts[2])); err == nil {
					column = c
				}
			}
		} else {
			// Non-numeric trailing tokens stay part of the path.
			file = loc
		}
	}
	return file, line, column
}

// classifyCategory reclassifies a diagnostic from its message text. Linker
// mentions win over dependency mentions; everything else keeps the dialect's
// default.
func classifyCategory(message string, fallback Category) Category {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "linker") ||
		strings.Contains(lower, "undefined symbol") ||
		strings.Contains(lower, "ld:") {
		return CategoryLinking
	}

	hasResolve := strings.Contains(lower, "resolve") && !strings.Contains(lower, "unresolved")
	if strings.Contains(lower, "package") ||
		strings.Contains(lower, " dependency") ||
		strings.Contains(lower, "dependency ") ||
		hasResolve {
		return CategoryDependency
	}

	return fallback
}
