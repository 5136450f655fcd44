package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/buildsift/buildsift/internal/input"
	"github.com/buildsift/buildsift/internal/parser"
	"github.com/spf13/cobra"
)

func detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect [FILE]",
		Short: "Print the detected log dialect without parsing",
		Example: `  xcodebuild 2>&1 | buildsift detect
  buildsift detect build.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			fmt.Fprintln(cmd.OutOrStdout(), parser.Detect(text))
			return nil
		},
	}
}
