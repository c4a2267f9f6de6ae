package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkddus222/smqc/internal/joinplan"
	"github.com/rkddus222/smqc/internal/manifest"
)

func newExplainJoinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain-join <model> [model...]",
		Short: "Show the join spine the planner would synthesize across a set of models",
		Long:  "Builds the entity relationship graph restricted to the given models and prints either the synthesized LEFT JOIN spine, or the disconnected model groups when no single spine connects them all.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Assemble(rootManifestDir(cmd))
			if err != nil {
				return fmt.Errorf("assemble manifest: %w", err)
			}

			plan, err := joinplan.Build(args, m)
			if err != nil {
				var joinErr *joinplan.JoinError
				if errors.As(err, &joinErr) {
					if getOutputFormat(cmd) == "json" {
						return printJSON(os.Stdout, map[string]interface{}{
							"connected":  false,
							"model_sets": joinErr.ModelSets,
						})
					}
					fmt.Fprintln(os.Stdout, "models do not form a single connected join graph:")
					for _, set := range joinErr.ModelSets {
						fmt.Fprintf(os.Stdout, "  %v\n", set)
					}
					return nil
				}
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]interface{}{
					"connected": true,
					"steps":     plan.Steps,
				})
			}
			fmt.Fprintln(os.Stdout, "join spine:")
			for _, step := range plan.Steps {
				fmt.Fprintf(os.Stdout, "  %s LEFT JOIN %s ON %v\n", step.Left, step.Right, step.KeyPairs)
			}
			return nil
		},
	}

	return cmd
}
