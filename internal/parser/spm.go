package parser

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// SPMParser handles Swift Package Manager metadata output: dump-package JSON,
// show-dependencies trees, resolve/update progress, and describe summaries.
type SPMParser struct{}

func NewSPMParser() *SPMParser {
	return &SPMParser{}
}

func (p *SPMParser) Format() Format { return FormatSPM }

// spmCommand is the sub-command the input came from, classified from its
// textual shape.
type spmCommand int

const (
	spmUnknown spmCommand = iota
	spmDumpPackage
	spmShowDependencies
	spmResolve
	spmUpdate
	spmDescribe
)

func (p *SPMParser) CanParse(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(input)

	if strings.HasPrefix(trimmed, "{") &&
		strings.Contains(lower, `"name"`) &&
		containsAny(lower, `"targets"`, `"products"`, `"dependencies"`) {
		return true
	}
	if containsAny(input, "├─", "└─", "│") || strings.Contains(lower, "dependencies:") {
		return true
	}
	if containsAny(lower, "resolving", "fetching", "resolved", "updating", "cloning") {
		return true
	}
	return containsAny(lower, "package name:", "package version:")
}

func (p *SPMParser) Parse(input string) *Result {
	switch classifySPMCommand(input) {
	case spmDumpPackage:
		return p.parseDumpPackage(input)
	case spmShowDependencies:
		return p.parseShowDependencies(input)
	case spmResolve:
		return p.parseResolveOrUpdate(input)
	case spmUpdate:
		return p.parseResolveOrUpdate(input)
	case spmDescribe:
		return p.parseDescribe(input)
	default:
		result := newResult(FormatSPM)
		result.finalize()
		return result
	}
}

// classifySPMCommand picks the sub-command from textual cues, most distinctive
// first. `updating` classifies as resolve because that probe runs earlier;
// update is reached through `updated` or `checking out`.
func classifySPMCommand(input string) spmCommand {
	trimmed := strings.TrimSpace(input)
	lower := strings.ToLower(input)

	switch {
	case strings.Contains(lower, `"name"`) || strings.HasPrefix(trimmed, "{"):
		return spmDumpPackage
	case containsAny(input, "├─", "└─", "│") || strings.Contains(lower, "dependencies:"):
		return spmShowDependencies
	case containsAny(lower, "resolving", "fetching", "resolved", "updating"):
		return spmResolve
	case containsAny(lower, "package name:", "package version:"):
		return spmDescribe
	case containsAny(lower, "updated", "checking out"):
		return spmUpdate
	default:
		return spmUnknown
	}
}

// --- dump-package ---

func (p *SPMParser) parseDumpPackage(input string) *Result {
	result := newResult(FormatSPM)

	if !utf8.ValidString(input) {
		result.addDiagnostic(Diagnostic{
			Severity: SeverityError,
			Category: CategoryBuild,
			Message:  "Invalid UTF-8",
		})
		result.Status = StatusFailed
		result.finalize()
		return result
	}

	if !gjson.Valid(input) {
		result.addDiagnostic(Diagnostic{
			Severity: SeverityError,
			Category: CategoryBuild,
			Message:  "Failed to parse Package.swift JSON: invalid JSON",
		})
		result.Status = StatusFailed
		result.finalize()
		return result
	}

	root := gjson.Parse(input)
	info := &SPMInfo{Command: "dump-package"}
	info.PackageName = root.Get("name").String()
	info.Version = root.Get("toolsVersion._version").String()

	root.Get("products").ForEach(func(_, product gjson.Result) bool {
		typ := product.Get("type.name").String()
		if typ == "" {
			typ = "unknown"
		}
		info.Targets = append(info.Targets, SPMTarget{
			Name:         product.Get("name").String(),
			Type:         typ,
			Dependencies: []string{},
		})
		return true
	})

	root.Get("dependencies").ForEach(func(_, dep gjson.Result) bool {
		if d, ok := parseManifestDependency(dep); ok {
			info.Dependencies = append(info.Dependencies, d)
		}
		return true
	})

	result.Status = StatusSuccess
	info.Success = true
	result.SPMInfo = info
	result.finalize()
	return result
}

// parseManifestDependency reads one element of the manifest's dependencies
// array. The modern layout nests everything under sourceControl[0]; older
// manifests carry url/requirement (or path, for local packages) at the top
// level.
func parseManifestDependency(dep gjson.Result) (SPMDependency, bool) {
	var name, version, url string

	if sc := dep.Get("sourceControl.0"); sc.Exists() {
		name = sc.Get("identity").String()
		url = sc.Get("location.remote.0.urlString").String()
		if rng := sc.Get("requirement.range.0"); rng.IsObject() {
			version = rng.Get("lowerBound").String() + " - " + rng.Get("upperBound").String()
		} else {
			version = extractRequirementVersion(sc.Get("requirement"))
		}
	}

	if name == "" {
		if u := dep.Get("url"); u.Exists() {
			url = u.String()
			name = dep.Get("name").String()
			if name == "" {
				name = packageNameFromURL(url)
			}
			version = extractRequirementVersion(dep.Get("requirement"))
		} else if path := dep.Get("path"); path.Exists() {
			name = dep.Get("name").String()
			if name == "" {
				name = filepath.Base(path.String())
			}
			return SPMDependency{
				Name:    name,
				Version: "local",
				Type:    DepTypeSourceControl,
			}, name != ""
		}
	}

	if name == "" {
		return SPMDependency{}, false
	}

	return SPMDependency{
		Name:    name,
		Version: version,
		Type:    dependencyTypeFromURL(url),
		URL:     url,
	}, true
}

// extractRequirementVersion renders a requirement mapping as a display
// version string.
func extractRequirementVersion(req gjson.Result) string {
	if rng := req.Get("range"); rng.IsArray() {
		var parts []string
		for _, r := range rng.Array() {
			if r.Type == gjson.String {
				parts = append(parts, r.String())
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	if branch := req.Get("branch"); branch.Exists() {
		return "branch: " + firstString(branch)
	}
	if rev := req.Get("revision"); rev.Exists() {
		s := firstString(rev)
		if len(s) > 8 {
			s = s[:8]
		}
		return "revision: " + s
	}
	if exact := req.Get("exact"); exact.Exists() {
		return firstString(exact)
	}
	return "unspecified"
}

// firstString unwraps a value that manifests sometimes encode as a one-element
// array and sometimes as a bare string.
func firstString(v gjson.Result) string {
	if v.IsArray() {
		arr := v.Array()
		if len(arr) == 0 {
			return ""
		}
		return arr[0].String()
	}
	return v.String()
}

func packageNameFromURL(url string) string {
	name := url
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

func dependencyTypeFromURL(url string) string {
	switch {
	case url == "":
		return DepTypeSourceControl
	case strings.HasSuffix(url, ".binary"):
		return DepTypeBinary
	case strings.Contains(url, "@swift-package-registry"):
		return DepTypeRegistry
	default:
		return DepTypeSourceControl
	}
}

// --- show-dependencies ---

// Glyphs the dependency printer draws trees with.
const treeGlyphs = "├└│─"

func hasTreeGlyph(line string) bool {
	return strings.ContainsAny(line, treeGlyphs)
}

// Dependency line shapes, tried in priority order after tree glyphs are
// stripped.
var (
	depParenRe    = regexp.MustCompile(`^(.+?)\s*\(([^)]*)\)$`)
	depAtRe       = regexp.MustCompile(`^([^<>\[\]]+?)@(.+)$`)
	depBracketRe  = regexp.MustCompile(`^(\S+)\s*\[([^\]]+)\]$`)
	depAngleRe    = regexp.MustCompile(`^(.+?)<([^>]+)>$`)
	depPinRe      = regexp.MustCompile(`^(\S+)\s+((?:revision|branch|exact):\s*.+)$`)
	depNameVerRe  = regexp.MustCompile(`^(\S+)\s+(\S+)$`)
	treeGlyphSeqs = []string{"├─", "└─", "│", "─"}
)

func (p *SPMParser) parseShowDependencies(input string) *Result {
	result := newResult(FormatSPM)
	lines := splitLines(input)

	headerSeen := false
	inSection := false
	rootCandidateDone := false
	var deps []SPMDependency

	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)

		if strings.HasPrefix(lower, "error:") {
			result.addDiagnostic(parseDiagnosticLine(trimmed, SeverityError, CategoryDependency))
			continue
		}
		if strings.HasPrefix(lower, "warning:") {
			result.addDiagnostic(parseDiagnosticLine(trimmed, SeverityWarning, CategoryDependency))
			continue
		}
		if lower == "dependencies:" {
			headerSeen = true
			inSection = true
			continue
		}

		glyph := hasTreeGlyph(raw)
		if !inSection {
			if !glyph {
				continue
			}
			inSection = true
		}

		if glyph && !rootCandidateDone {
			rootCandidateDone = true
			if headerSeen && deeperGlyphFollows(lines, i) {
				// The top node names the package being described, not a
				// dependency.
				continue
			}
		}

		cleaned := cleanTreeLine(raw)
		if cleaned == "" {
			continue
		}
		if dep, ok := parseDependencyLine(cleaned); ok {
			deps = append(deps, dep)
		}
	}

	result.Metrics.TargetCount = len(deps)

	switch {
	case result.Metrics.ErrorCount > 0:
		result.Status = StatusFailed
	case inSection:
		result.Status = StatusSuccess
	}
	result.finalize()
	return result
}

// deeperGlyphFollows checks whether one of the two lines after index i is
// indented deeper and still part of the tree. That is the cue that line i is
// the root package rather than a first dependency.
func deeperGlyphFollows(lines []string, i int) bool {
	base := indentOf(lines[i])
	for j := i + 1; j <= i+2 && j < len(lines); j++ {
		if hasTreeGlyph(lines[j]) && indentOf(lines[j]) > base {
			return true
		}
	}
	return false
}

func indentOf(line string) int {
	for i, r := range line {
		if !unicode.IsSpace(r) {
			return i
		}
	}
	return len(line)
}

// cleanTreeLine removes the tree drawing from a dependency line, leaving just
// the package text.
func cleanTreeLine(line string) string {
	for _, seq := range treeGlyphSeqs {
		line = strings.ReplaceAll(line, seq, "")
	}
	return strings.Trim(line, treeGlyphs+" \t")
}

// parseDependencyLine matches a cleaned dependency line against the known
// shapes, most specific first.
func parseDependencyLine(text string) (SPMDependency, bool) {
	if m := depParenRe.FindStringSubmatch(text); m != nil {
		version := strings.TrimSpace(m[2])
		return SPMDependency{
			Name:    strings.TrimSpace(m[1]),
			Version: version,
			Type:    dependencyTypeFromVersion(version),
		}, true
	}

	if m := depAtRe.FindStringSubmatch(text); m != nil {
		version := strings.TrimSpace(m[2])
		return SPMDependency{
			Name:    strings.TrimSpace(m[1]),
			Version: version,
			Type:    dependencyTypeFromVersion(version),
		}, true
	}

	if m := depBracketRe.FindStringSubmatch(text); m != nil {
		return SPMDependency{
			Name:    m[1],
			Version: DepTypeSourceControl,
			Type:    DepTypeSourceControl,
			URL:     strings.TrimSpace(m[2]),
		}, true
	}

	if m := depAngleRe.FindStringSubmatch(text); m != nil {
		dep := SPMDependency{
			Name: strings.TrimSpace(m[1]),
			Type: DepTypeSourceControl,
		}
		inner := m[2]
		if at := strings.LastIndex(inner, "@"); at >= 0 {
			dep.URL = inner[:at]
			dep.Version = inner[at+1:]
		} else {
			dep.URL = inner
		}
		return dep, true
	}

	if m := depPinRe.FindStringSubmatch(text); m != nil {
		return SPMDependency{
			Name:    m[1],
			Version: m[2],
			Type:    DepTypeSourceControl,
		}, true
	}

	if m := depNameVerRe.FindStringSubmatch(text); m != nil {
		candidate := m[2]
		first, _ := utf8.DecodeRuneInString(candidate)
		if unicode.IsDigit(first) || strings.Contains(candidate, ".") {
			return SPMDependency{
				Name:    m[1],
				Version: candidate,
				Type:    dependencyTypeFromVersion(candidate),
			}, true
		}
	}

	if !strings.ContainsAny(text, " \t") {
		return SPMDependency{
			Name:    text,
			Version: "unspecified",
			Type:    DepTypeSourceControl,
		}, true
	}

	return SPMDependency{}, false
}

// dependencyTypeFromVersion classifies how the dependency is obtained from
// the way its version is written.
func dependencyTypeFromVersion(version string) string {
	lower := strings.ToLower(version)
	switch {
	case containsAny(lower, "branch:", "revision:"):
		return DepTypeSourceControl
	case containsAny(lower, ".binary", "xcframework"):
		return DepTypeBinary
	case containsAny(lower, "..<", " - ", "exact:"):
		return DepTypeRegistry
	default:
		return DepTypeSourceControl
	}
}

// --- resolve / update ---

func (p *SPMParser) parseResolveOrUpdate(input string) *Result {
	result := newResult(FormatSPM)

	for _, raw := range splitLines(input) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "error:") || strings.Contains(lower, "failed"):
			result.addDiagnostic(parseDiagnosticLine(line, SeverityError, CategoryDependency))
		case strings.Contains(lower, "warning:"):
			result.addDiagnostic(parseDiagnosticLine(line, SeverityWarning, CategoryDependency))
		case containsAny(lower, "resolving", "cloning", "fetching", "completed"):
			result.addDiagnostic(Diagnostic{
				Severity: SeverityInfo,
				Category: CategoryDependency,
				Message:  line,
			})
		}
	}

	if result.Metrics.ErrorCount > 0 {
		result.Status = StatusFailed
	} else {
		result.Status = StatusSuccess
	}
	result.finalize()
	return result
}

// --- describe ---

func (p *SPMParser) parseDescribe(input string) *Result {
	result := newResult(FormatSPM)

	for _, raw := range splitLines(input) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		if strings.Contains(lower, "error:") {
			result.addDiagnostic(parseDiagnosticLine(line, SeverityError, CategoryBuild))
		} else if strings.Contains(lower, "warning:") {
			result.addDiagnostic(parseDiagnosticLine(line, SeverityWarning, CategoryBuild))
		}
	}

	if result.Metrics.ErrorCount > 0 {
		result.Status = StatusFailed
	} else {
		result.Status = StatusSuccess
	}
	result.finalize()
	return result
}
