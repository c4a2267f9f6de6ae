package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkddus222/smqc/internal/lint"
)

func newLintCmd() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Run manifest-validity and cross-reference checks non-fatally",
		Long:  "Loads the manifest from --manifest-dir leniently and reports every violation found, without failing on the first one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var report *lint.Report
			var err error
			if cmd.Flags().Changed("similarity-threshold") {
				report, err = lint.LintWithThreshold(rootManifestDir(cmd), threshold)
			} else {
				report, err = lint.Lint(rootManifestDir(cmd))
			}
			if err != nil {
				return fmt.Errorf("lint: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				if err := printJSON(os.Stdout, report); err != nil {
					return err
				}
			} else {
				for _, v := range report.Violations {
					fmt.Fprintln(os.Stdout, v.String())
				}
			}

			if report.HasErrors() {
				return fmt.Errorf("manifest has lint errors")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "similarity-threshold", 0, "override the did-you-mean similarity threshold (0-1)")

	return cmd
}
