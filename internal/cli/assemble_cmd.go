package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkddus222/smqc/internal/manifest"
)

func newAssembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Load and validate the manifest without compiling a query",
		Long:  "Loads every semantic-model YAML file under --manifest-dir, fails fast on the first structural error, and prints the assembled manifest.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := manifest.Assemble(rootManifestDir(cmd))
			if err != nil {
				return fmt.Errorf("assemble manifest: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, m)
			}

			fmt.Fprintf(os.Stdout, "%d semantic model(s), %d metric(s)\n", len(m.SemanticModels), len(m.Metrics))
			for _, sm := range m.SemanticModels {
				fmt.Fprintf(os.Stdout, "  model %s: %d entities, %d dimensions, %d measures\n",
					sm.Name, len(sm.Entities), len(sm.Dimensions), len(sm.Measures))
			}
			for _, metric := range m.Metrics {
				fmt.Fprintf(os.Stdout, "  metric %s (%s)\n", metric.Name, metric.MetricType)
			}
			return nil
		},
	}

	return cmd
}
