package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buildsift/buildsift/internal/parser"
	"github.com/fatih/color"
)

// Kind selects an output format.
type Kind string

const (
	Text    Kind = "text"
	JSON    Kind = "json"
	Summary Kind = "summary"
	Compact Kind = "compact"
	Minimal Kind = "minimal"
)

// ParseKind validates a --format flag value.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Text, JSON, Summary, Compact, Minimal:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, summary, compact, or minimal)", s)
	}
}

// Options controls which diagnostics the human-readable formats print.
type Options struct {
	ErrorsOnly   bool
	WarningsOnly bool
}

// summaryDiagnosticLimit caps how many diagnostics the summary format shows.
const summaryDiagnosticLimit = 10

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// Render serializes a report in the requested format.
func Render(r *parser.Result, kind Kind, opts Options) (string, error) {
	switch kind {
	case Text:
		return renderText(r, opts), nil
	case JSON:
		return renderJSON(r)
	case Summary:
		return renderSummary(r, opts), nil
	case Compact:
		return renderCompact(r)
	case Minimal:
		return renderMinimal(r), nil
	default:
		return "", fmt.Errorf("unknown format %q", kind)
	}
}

// filtered applies the --errors/--warnings selection. With neither flag all
// diagnostics pass through.
func filtered(diags []parser.Diagnostic, opts Options) []parser.Diagnostic {
	if !opts.ErrorsOnly && !opts.WarningsOnly {
		return diags
	}
	var out []parser.Diagnostic
	for _, d := range diags {
		isErr := d.Severity == parser.SeverityError || d.Severity == parser.SeverityCritical
		isWarn := d.Severity == parser.SeverityWarning
		if (opts.ErrorsOnly && isErr) || (opts.WarningsOnly && isWarn) {
			out = append(out, d)
		}
	}
	return out
}

func statusLabel(s parser.Status) string {
	switch s {
	case parser.StatusSuccess:
		return green(string(s))
	case parser.StatusFailed:
		return red(string(s))
	default:
		return string(s)
	}
}

func severityLabel(sev parser.Severity) string {
	switch sev {
	case parser.SeverityError, parser.SeverityCritical:
		return red(string(sev))
	case parser.SeverityWarning:
		return yellow(string(sev))
	default:
		return cyan(string(sev))
	}
}

func diagnosticLine(d parser.Diagnostic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", severityLabel(d.Severity))
	if d.Location != "" {
		fmt.Fprintf(&b, " %s:", d.Location)
	}
	fmt.Fprintf(&b, " %s", d.Message)
	return b.String()
}

func renderText(r *parser.Result, opts Options) string {
	var b strings.Builder

	b.WriteString(bold("Build Report") + "\n")
	b.WriteString("============\n")
	fmt.Fprintf(&b, "Format: %s\n", r.Format)
	fmt.Fprintf(&b, "Status: %s\n", statusLabel(r.Status))

	b.WriteString("\n" + bold("Metrics") + "\n")
	b.WriteString("-------\n")
	fmt.Fprintf(&b, "Errors:   %d\n", r.Metrics.ErrorCount)
	fmt.Fprintf(&b, "Warnings: %d\n", r.Metrics.WarningCount)
	fmt.Fprintf(&b, "Notes:    %d\n", r.Metrics.InfoCount)
	fmt.Fprintf(&b, "Targets:  %d\n", r.Metrics.TargetCount)
	if r.Metrics.TotalDuration > 0 {
		fmt.Fprintf(&b, "Duration: %.1fs\n", r.Metrics.TotalDuration)
	}

	if diags := filtered(r.Diagnostics, opts); len(diags) > 0 {
		b.WriteString("\n" + bold("Diagnostics") + "\n")
		b.WriteString("-----------\n")
		for _, d := range diags {
			b.WriteString(diagnosticLine(d) + "\n")
		}
	}

	if len(r.Metrics.CompiledFiles) > 0 {
		b.WriteString("\n" + bold("Compiled Files") + "\n")
		b.WriteString("--------------\n")
		for _, f := range r.Metrics.CompiledFiles {
			fmt.Fprintf(&b, "  %s\n", f)
		}
	}

	if r.SPMInfo != nil {
		b.WriteString("\n" + bold("Package") + "\n")
		b.WriteString("-------\n")
		fmt.Fprintf(&b, "Command: %s\n", r.SPMInfo.Command)
		if r.SPMInfo.PackageName != "" {
			fmt.Fprintf(&b, "Name:    %s\n", r.SPMInfo.PackageName)
		}
		if r.SPMInfo.Version != "" {
			fmt.Fprintf(&b, "Version: %s\n", r.SPMInfo.Version)
		}
		for _, t := range r.SPMInfo.Targets {
			fmt.Fprintf(&b, "  product %s (%s)\n", t.Name, t.Type)
		}
		for _, d := range r.SPMInfo.Dependencies {
			line := fmt.Sprintf("  %s %s [%s]", d.Name, d.Version, d.Type)
			if d.URL != "" {
				line += " " + d.URL
			}
			b.WriteString(line + "\n")
		}
	}

	return b.String()
}

func renderJSON(r *parser.Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return string(data) + "\n", nil
}

func renderSummary(r *parser.Result, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Format: %s\n", r.Format)
	fmt.Fprintf(&b, "Status: %s\n", statusLabel(r.Status))
	fmt.Fprintf(&b, "Errors: %d\n", r.Metrics.ErrorCount)
	fmt.Fprintf(&b, "Warnings: %d\n", r.Metrics.WarningCount)
	fmt.Fprintf(&b, "Files: %d\n", len(r.Metrics.CompiledFiles))
	fmt.Fprintf(&b, "Targets: %d\n", r.Metrics.TargetCount)
	fmt.Fprintf(&b, "Duration: %.1fs\n", r.Metrics.TotalDuration)

	diags := filtered(r.Diagnostics, opts)
	if len(diags) == 0 {
		return b.String()
	}
	shown := diags
	if len(shown) > summaryDiagnosticLimit {
		shown = shown[:summaryDiagnosticLimit]
	}
	fmt.Fprintf(&b, "Diagnostics (%d of %d):\n", len(shown), len(diags))
	for _, d := range shown {
		b.WriteString("  " + diagnosticLine(d) + "\n")
	}
	return b.String()
}

// compactReport is the flat shape of the compact JSON output.
type compactReport struct {
	Format   parser.Format `json:"format"`
	Status   parser.Status `json:"status"`
	Errors   int           `json:"errors"`
	Warnings int           `json:"warnings"`
	Files    int           `json:"files"`
	Duration float64       `json:"duration"`
}

func renderCompact(r *parser.Result) (string, error) {
	data, err := json.Marshal(compactReport{
		Format:   r.Format,
		Status:   r.Status,
		Errors:   r.Metrics.ErrorCount,
		Warnings: r.Metrics.WarningCount,
		Files:    len(r.Metrics.CompiledFiles),
		Duration: r.Metrics.TotalDuration,
	})
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return string(data) + "\n", nil
}

func renderMinimal(r *parser.Result) string {
	return fmt.Sprintf("%s | ERRORS: %d | WARNINGS: %d | FILES: %d | %.1fs\n",
		strings.ToUpper(string(r.Status)),
		r.Metrics.ErrorCount,
		r.Metrics.WarningCount,
		len(r.Metrics.CompiledFiles),
		r.Metrics.TotalDuration)
}
