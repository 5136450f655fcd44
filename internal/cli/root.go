package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/buildsift/buildsift/internal/format"
	"github.com/buildsift/buildsift/internal/input"
	"github.com/buildsift/buildsift/internal/parser"
	"github.com/buildsift/buildsift/internal/ui"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	rootCmd *cobra.Command
)

func init() {
	var (
		formatFlag string
		dialect    string
		errorsOnly bool
		warnsOnly  bool
		outputPath string
		minimal    bool
	)

	rootCmd = &cobra.Command{
		Use:   "buildsift [FILE]",
		Short: "Turn Swift and Xcode build logs into structured reports",
		Long: `buildsift reads raw xcodebuild, swift build, or Swift Package Manager
output and emits a single structured build report.

Input comes from FILE, or from standard input when FILE is omitted or "-".

Common workflows:
  xcodebuild 2>&1 | buildsift              Human-readable report
  swift build 2>&1 | buildsift -f json     Machine-readable report
  swift package show-dependencies | buildsift --minimal`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := ui.NewRenderer()

			path := ""
			if len(args) > 0 {
				path = args[0]
			}

			text, err := input.Read(path)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("empty input: pipe a build log or name a file")
			}

			forced, err := parseDialect(dialect)
			if err != nil {
				return err
			}

			var result *parser.Result
			if forced == parser.FormatUnknown {
				result = parser.Parse(text)
			} else {
				result = parser.ParseAs(text, forced)
			}

			if verbose {
				renderer.Info("parsed %d bytes as %s", len(text), result.Format)
			}

			kind := format.Kind(formatFlag)
			if minimal {
				kind = format.Minimal
			} else if kind, err = format.ParseKind(formatFlag); err != nil {
				return err
			}

			out, err := format.Render(result, kind, format.Options{
				ErrorsOnly:   errorsOnly,
				WarningsOnly: warnsOnly,
			})
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				if verbose {
					renderer.Success("report written to %s", outputPath)
				}
				return nil
			}

			fmt.Print(out)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show parse details on stderr")
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "text", "Output format (text/json/summary/compact)")
	rootCmd.Flags().StringVar(&dialect, "dialect", "auto", "Force a dialect (auto/xcode/swift/spm)")
	rootCmd.Flags().BoolVarP(&errorsOnly, "errors", "e", false, "Only show error diagnostics")
	rootCmd.Flags().BoolVarP(&warnsOnly, "warnings", "w", false, "Only show warning diagnostics")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	rootCmd.Flags().BoolVar(&minimal, "minimal", false, "One-line status output")
}

// parseDialect maps the --dialect flag to a format. "auto" (and "") mean
// detection; FormatUnknown is the sentinel for that.
func parseDialect(s string) (parser.Format, error) {
	switch s {
	case "", "auto":
		return parser.FormatUnknown, nil
	case "xcode":
		return parser.FormatXcode, nil
	case "swift":
		return parser.FormatSwift, nil
	case "spm":
		return parser.FormatSPM, nil
	default:
		return parser.FormatUnknown, fmt.Errorf("unknown dialect %q (want auto, xcode, swift, or spm)", s)
	}
}

func Execute(ctx context.Context, version string) error {
	rootCmd.Version = version

	rootCmd.AddCommand(detectCmd())

	return rootCmd.ExecuteContext(ctx)
}

func Verbose() bool { return verbose }
