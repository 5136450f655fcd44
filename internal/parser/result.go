package parser

import "time"

// Format identifies which build-log dialect produced the input.
type Format string

const (
	FormatXcode   Format = "xcode"
	FormatSwift   Format = "swift"
	FormatSPM     Format = "spm"
	FormatUnknown Format = "unknown"
)

// Status is the overall outcome of the build described by the log.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusUnknown Status = "unknown"
)

// Severity classifies a single diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	// SeverityCritical is reserved. No parser emits it, but consumers count it
	// with errors when deriving status.
	SeverityCritical Severity = "critical"
)

// Category describes which build phase a diagnostic belongs to.
type Category string

const (
	CategoryBuild       Category = "build"
	CategoryCompilation Category = "compilation"
	CategoryLinking     Category = "linking"
	CategoryDependency  Category = "dependency"
	CategoryOther       Category = "other"
)

// Diagnostic is a single error, warning, or note extracted from the log.
// Location is the exact substring that preceded the severity marker; FilePath
// is its path component, with Line and Column populated when the location
// carried them.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Location string   `json:"location,omitempty"`
	FilePath string   `json:"file_path,omitempty"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
}

// Metrics accumulates counts derived from the log.
type Metrics struct {
	ErrorCount    int      `json:"error_count"`
	WarningCount  int      `json:"warning_count"`
	InfoCount     int      `json:"info_count"`
	CompiledFiles []string `json:"compiled_files,omitempty"`
	TargetCount   int      `json:"target_count"`
	TotalDuration float64  `json:"total_duration,omitempty"`
}

// addCompiledFile appends a basename, preserving first-occurrence order and
// dropping duplicates.
func (m *Metrics) addCompiledFile(name string) {
	for _, f := range m.CompiledFiles {
		if f == name {
			return
		}
	}
	m.CompiledFiles = append(m.CompiledFiles, name)
}

// Timing holds the build's wall-clock endpoints, when the log revealed them,
// and the total duration in seconds.
type Timing struct {
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	TotalDuration float64    `json:"total_duration"`
}

// SPMTarget describes one product of a dumped package manifest.
type SPMTarget struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Dependencies []string `json:"dependencies"`
}

// Dependency type strings used by SPMDependency.Type.
const (
	DepTypeSourceControl = "source-control"
	DepTypeBinary        = "binary"
	DepTypeRegistry      = "registry"
)

// SPMDependency describes one package dependency.
type SPMDependency struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Type    string `json:"type"`
	URL     string `json:"url,omitempty"`
}

// SPMInfo carries the structured result of an SPM dump-package invocation.
type SPMInfo struct {
	Command      string          `json:"command"`
	Success      bool            `json:"success"`
	PackageName  string          `json:"package_name,omitempty"`
	Version      string          `json:"version,omitempty"`
	Targets      []SPMTarget     `json:"targets,omitempty"`
	Dependencies []SPMDependency `json:"dependencies,omitempty"`
}

// Result is the uniform report produced by a single parse. All fields are
// populated by the parse call and immutable afterwards.
type Result struct {
	Format      Format       `json:"format"`
	Status      Status       `json:"status"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Metrics     Metrics      `json:"metrics"`
	Timing      Timing       `json:"timing"`
	SPMInfo     *SPMInfo     `json:"spm_info,omitempty"`
}

func newResult(format Format) *Result {
	return &Result{
		Format:      format,
		Status:      StatusUnknown,
		Diagnostics: []Diagnostic{},
	}
}

// addDiagnostic appends d and bumps the matching metric counter.
func (r *Result) addDiagnostic(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	switch d.Severity {
	case SeverityError, SeverityCritical:
		r.Metrics.ErrorCount++
	case SeverityWarning:
		r.Metrics.WarningCount++
	case SeverityInfo:
		r.Metrics.InfoCount++
	}
}

// finalize copies the timing duration into metrics and applies the status
// precedence rule: any error forces failed, regardless of earlier markers.
func (r *Result) finalize() {
	r.Metrics.TotalDuration = r.Timing.TotalDuration
	if r.Metrics.ErrorCount > 0 {
		r.Status = StatusFailed
	}
}
