package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSPMParserCanParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"package json", `{"name": "MyPkg", "targets": []}`, true},
		{"tree glyphs", "└─ swift-log 1.0.0", true},
		{"dependencies header", "Dependencies:\n  swift-log", true},
		{"resolving", "Resolving https://github.com/apple/swift-log", true},
		{"fetching", "Fetching https://github.com/apple/swift-nio", true},
		{"describe output", "Package name: MyPkg", true},
		{"json without package keys", `{"foo": 1}`, false},
		{"empty", "", false},
		{"plain build log", "** BUILD SUCCEEDED **", false},
	}

	p := NewSPMParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanParse(tt.input))
		})
	}
}

func TestSPMDumpPackageModernManifest(t *testing.T) {
	input := `{
  "name": "MyPackage",
  "toolsVersion": {"_version": "5.9.0"},
  "products": [
    {"name": "MyLib", "type": {"name": "library"}},
    {"name": "mytool", "type": {}}
  ],
  "dependencies": [
    {
      "sourceControl": [
        {
          "identity": "swift-algorithms",
          "location": {"remote": [{"urlString": "https://github.com/apple/swift-algorithms.git"}]},
          "requirement": {"range": [{"lowerBound": "1.0.0", "upperBound": "2.0.0"}]}
        }
      ]
    }
  ]
}`

	result := NewSPMParser().Parse(input)

	assert.Equal(t, FormatSPM, result.Format)
	assert.Equal(t, StatusSuccess, result.Status)
	require.NotNil(t, result.SPMInfo)
	info := result.SPMInfo
	assert.Equal(t, "dump-package", info.Command)
	assert.True(t, info.Success)
	assert.Equal(t, "MyPackage", info.PackageName)
	assert.Equal(t, "5.9.0", info.Version)

	require.Len(t, info.Targets, 2)
	assert.Equal(t, SPMTarget{Name: "MyLib", Type: "library", Dependencies: []string{}}, info.Targets[0])
	assert.Equal(t, "unknown", info.Targets[1].Type)

	require.Len(t, info.Dependencies, 1)
	dep := info.Dependencies[0]
	assert.Equal(t, "swift-algorithms", dep.Name)
	assert.Equal(t, "1.0.0 - 2.0.0", dep.Version)
	assert.Equal(t, DepTypeSourceControl, dep.Type)
	assert.Equal(t, "https://github.com/apple/swift-algorithms.git", dep.URL)
}

func TestSPMDumpPackageLegacyManifest(t *testing.T) {
	input := `{
  "name": "Old",
  "dependencies": [
    {"url": "https://github.com/apple/swift-nio.git", "requirement": {"range": ["1.0.0..<2.0.0"]}},
    {"url": "https://github.com/x/tool.git", "requirement": {"branch": ["main"]}},
    {"url": "https://github.com/x/lib.git", "requirement": {"revision": ["abcdef1234567890"]}},
    {"url": "https://github.com/x/pin.git", "requirement": {"exact": ["1.2.3"]}},
    {"url": "https://github.com/x/any.git", "requirement": {}},
    {"path": "../LocalPkg"}
  ]
}`

	result := NewSPMParser().Parse(input)

	require.NotNil(t, result.SPMInfo)
	deps := result.SPMInfo.Dependencies
	require.Len(t, deps, 6)

	assert.Equal(t, "swift-nio", deps[0].Name)
	assert.Equal(t, "1.0.0..<2.0.0", deps[0].Version)
	assert.Equal(t, "branch: main", deps[1].Version)
	assert.Equal(t, "revision: abcdef12", deps[2].Version)
	assert.Equal(t, "1.2.3", deps[3].Version)
	assert.Equal(t, "unspecified", deps[4].Version)

	local := deps[5]
	assert.Equal(t, "LocalPkg", local.Name)
	assert.Equal(t, "local", local.Version)
	assert.Equal(t, DepTypeSourceControl, local.Type)
}

func TestSPMDumpPackageDependencyTypes(t *testing.T) {
	input := `{
  "name": "Typed",
  "dependencies": [
    {"url": "https://cdn.example.com/Anvil.binary", "requirement": {"exact": ["1.0.0"]}},
    {"url": "https://registry@swift-package-registry.example/identity", "requirement": {"exact": ["2.0.0"]}},
    {"url": "https://github.com/a/b.git", "requirement": {"exact": ["3.0.0"]}}
  ]
}`

	result := NewSPMParser().Parse(input)

	require.NotNil(t, result.SPMInfo)
	deps := result.SPMInfo.Dependencies
	require.Len(t, deps, 3)
	assert.Equal(t, DepTypeBinary, deps[0].Type)
	assert.Equal(t, DepTypeRegistry, deps[1].Type)
	assert.Equal(t, DepTypeSourceControl, deps[2].Type)
}

func TestSPMDumpPackageInvalidJSON(t *testing.T) {
	result := NewSPMParser().Parse(`{"name": "broken", "targets": [`)

	assert.Equal(t, StatusFailed, result.Status)
	assert.Nil(t, result.SPMInfo)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, SeverityError, result.Diagnostics[0].Severity)
	assert.Contains(t, result.Diagnostics[0].Message, "Failed to parse Package.swift JSON")
}

func TestSPMDumpPackageInvalidUTF8(t *testing.T) {
	result := NewSPMParser().Parse("{\"name\": \"x\xff\xfe\"}")

	assert.Equal(t, StatusFailed, result.Status)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "Invalid UTF-8", result.Diagnostics[0].Message)
}

func TestSPMShowDependenciesTree(t *testing.T) {
	input := "Dependencies:\n" +
		"└─ MyPackage\n" +
		"   ├─ swift-algorithms@1.0.0\n" +
		"   ├─ swift-nio@2.0.0\n" +
		"   └─ logging"

	result := NewSPMParser().Parse(input)

	assert.Equal(t, FormatSPM, result.Format)
	assert.Equal(t, StatusSuccess, result.Status)
	// Root package suppressed, three dependencies counted.
	assert.Equal(t, 3, result.Metrics.TargetCount)
}

func TestSPMShowDependenciesFlatListKeepsFirstEntry(t *testing.T) {
	input := "Dependencies:\n├─ alpha@1.0.0\n├─ beta@2.0.0"

	result := NewSPMParser().Parse(input)

	assert.Equal(t, 2, result.Metrics.TargetCount)
}

func TestSPMShowDependenciesWithoutHeader(t *testing.T) {
	input := "└─ swift-log 1.0.0\n└─ swift-nio 2.0.0"

	result := NewSPMParser().Parse(input)

	// No header seen, so the first glyph line is a normal dependency.
	assert.Equal(t, 2, result.Metrics.TargetCount)
	assert.Equal(t, StatusSuccess, result.Status)
}

func TestSPMShowDependenciesRootLookaheadHeuristic(t *testing.T) {
	// The documented lookahead suppresses the first entry whenever a deeper
	// glyph line follows within two lines, even in lists where that entry is
	// a real dependency.
	input := "Dependencies:\n└─ first@1.0.0\n   └─ nested@2.0.0"

	result := NewSPMParser().Parse(input)

	assert.Equal(t, 1, result.Metrics.TargetCount)
}

func TestSPMShowDependenciesDiagnostics(t *testing.T) {
	input := "error: could not find Package.swift\nDependencies:"

	result := NewSPMParser().Parse(input)

	assert.Equal(t, StatusFailed, result.Status)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, CategoryDependency, result.Diagnostics[0].Category)
}

func TestSPMShowDependenciesNeverEntered(t *testing.T) {
	result := NewSPMParser().parseShowDependencies("just some text\nmore text")

	assert.Equal(t, StatusUnknown, result.Status)
	assert.Zero(t, result.Metrics.TargetCount)
}

func TestParseDependencyLineShapes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want SPMDependency
	}{
		{
			name: "name with parenthesized version",
			text: "swift-algorithms (1.0.0)",
			want: SPMDependency{Name: "swift-algorithms", Version: "1.0.0", Type: DepTypeSourceControl},
		},
		{
			name: "range version is registry",
			text: "swift-collections (1.0.0..<2.0.0)",
			want: SPMDependency{Name: "swift-collections", Version: "1.0.0..<2.0.0", Type: DepTypeRegistry},
		},
		{
			name: "at version",
			text: "swift-nio@2.41.0",
			want: SPMDependency{Name: "swift-nio", Version: "2.41.0", Type: DepTypeSourceControl},
		},
		{
			name: "at in package name splits at first",
			text: "my@pkg@1.0",
			want: SPMDependency{Name: "my", Version: "pkg@1.0", Type: DepTypeSourceControl},
		},
		{
			name: "bracketed url",
			text: "MyLib [https://github.com/a/b.git]",
			want: SPMDependency{Name: "MyLib", Version: "source-control", Type: DepTypeSourceControl, URL: "https://github.com/a/b.git"},
		},
		{
			name: "bracketed url with parentheses",
			text: "MyLib [https://host/path(v2)]",
			want: SPMDependency{Name: "MyLib", Version: "source-control", Type: DepTypeSourceControl, URL: "https://host/path(v2)"},
		},
		{
			name: "angle url with version",
			text: "Foo<https://github.com/x/y.git@1.2.3>",
			want: SPMDependency{Name: "Foo", Version: "1.2.3", Type: DepTypeSourceControl, URL: "https://github.com/x/y.git"},
		},
		{
			name: "angle url without version",
			text: "Foo<https://github.com/x/y.git>",
			want: SPMDependency{Name: "Foo", Type: DepTypeSourceControl, URL: "https://github.com/x/y.git"},
		},
		{
			name: "revision pin",
			text: "swift-crypto revision: abc1234",
			want: SPMDependency{Name: "swift-crypto", Version: "revision: abc1234", Type: DepTypeSourceControl},
		},
		{
			name: "branch pin",
			text: "Thing branch:main",
			want: SPMDependency{Name: "Thing", Version: "branch:main", Type: DepTypeSourceControl},
		},
		{
			name: "space separated version",
			text: "swift-log 1.5.4",
			want: SPMDependency{Name: "swift-log", Version: "1.5.4", Type: DepTypeSourceControl},
		},
		{
			name: "version with leading v",
			text: "mypkg v1.2",
			want: SPMDependency{Name: "mypkg", Version: "v1.2", Type: DepTypeSourceControl},
		},
		{
			name: "bare name",
			text: "lonely",
			want: SPMDependency{Name: "lonely", Version: "unspecified", Type: DepTypeSourceControl},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDependencyLine(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDependencyLineRejectsProse(t *testing.T) {
	_, ok := parseDependencyLine("two words here")
	assert.False(t, ok)
}

func TestDependencyTypeFromVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"branch: main", DepTypeSourceControl},
		{"revision: abc1234", DepTypeSourceControl},
		{"Anvil.binary", DepTypeBinary},
		{"Framework.xcframework", DepTypeBinary},
		{"1.0.0..<2.0.0", DepTypeRegistry},
		{"1.0.0 - 2.0.0", DepTypeRegistry},
		{"exact: 1.0.0", DepTypeRegistry},
		{"1.0.0", DepTypeSourceControl},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, dependencyTypeFromVersion(tt.version))
		})
	}
}

func TestSPMResolveOutput(t *testing.T) {
	input := "Resolving https://github.com/apple/swift-nio at 2.0.0\n" +
		"Fetching https://github.com/apple/swift-log\n" +
		"Cloning https://github.com/apple/swift-log\n" +
		"Completed resolution in 2.3s"

	result := NewSPMParser().Parse(input)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 4, result.Metrics.InfoCount)
	assert.Zero(t, result.Metrics.ErrorCount)
	for _, d := range result.Diagnostics {
		assert.Equal(t, CategoryDependency, d.Category)
	}
}

func TestSPMResolveFailure(t *testing.T) {
	input := "Resolving https://github.com/a/b at 1.0.0\nerror: failed to resolve dependencies"

	result := NewSPMParser().Parse(input)

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, 1, result.Metrics.ErrorCount)
}

func TestSPMUpdateOutput(t *testing.T) {
	input := "Updated https://github.com/foo/bar\nEverything is already up-to-date"

	result := NewSPMParser().parseResolveOrUpdate(input)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Empty(t, result.Diagnostics)
}

func TestSPMDescribeOutput(t *testing.T) {
	input := "Package name: MyPkg\nPackage version: 1.0.0"

	result := NewSPMParser().Parse(input)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Empty(t, result.Diagnostics)
}

func TestSPMDescribeFailure(t *testing.T) {
	result := NewSPMParser().parseDescribe("error: no Package.swift manifest found")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, 1, result.Metrics.ErrorCount)
}

func TestSPMUnknownCommand(t *testing.T) {
	result := NewSPMParser().Parse("nothing recognizable at all")

	assert.Equal(t, FormatSPM, result.Format)
	assert.Equal(t, StatusUnknown, result.Status)
	assert.Empty(t, result.Diagnostics)
	assert.Zero(t, result.Metrics.TargetCount)
}

func TestClassifySPMCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  spmCommand
	}{
		{"json object", `{"name": "x"}`, spmDumpPackage},
		{"tree", "└─ foo 1.0.0", spmShowDependencies},
		{"header", "Dependencies:", spmShowDependencies},
		{"resolving", "Resolving https://x", spmResolve},
		{"updating classifies as resolve", "Updating https://x", spmResolve},
		{"describe", "Package name: X", spmDescribe},
		{"updated", "Updated https://x", spmUpdate},
		{"checking out", "Checking out 1.0.0 of https://x", spmUpdate},
		{"unknown", "whatever", spmUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifySPMCommand(tt.input))
		})
	}
}
