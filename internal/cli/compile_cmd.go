package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkddus222/smqc/internal/compiler"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/smqparse"
	"github.com/rkddus222/smqc/internal/sqlast"
	"github.com/rkddus222/smqc/internal/sqlcfg"
)

func newCompileCmd() *cobra.Command {
	var (
		metrics    []string
		groupBy    []string
		filters    []string
		orderBy    []string
		joins      []string
		limit      int
		hasLimit   bool
		inlineCTEs bool
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a semantic-model query into SQL",
		Long:  "Loads the manifest from --manifest-dir, compiles the SMQ described by its flags, and writes the rendered SQL.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hasLimit = cmd.Flags().Changed("limit")

			m, err := manifest.Assemble(rootManifestDir(cmd))
			if err != nil {
				return fmt.Errorf("assemble manifest: %w", err)
			}

			smq := smqparse.SMQ{
				Metrics: metrics,
				GroupBy: groupBy,
				Filters: filters,
				OrderBy: orderBy,
				Joins:   joins,
			}
			if hasLimit {
				smq.Limit = &limit
			}

			res, err := compiler.Compile(cmd.Context(), smq, m, sqlast.Dialect(rootDialect(cmd)), inlineCTEs, sqlcfg.Default())
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]interface{}{
					"sql":      res.SQL,
					"columns":  res.Columns,
					"trace_id": res.TraceID,
				})
			}
			_, _ = fmt.Fprintln(os.Stdout, res.SQL)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&metrics, "metric", nil, "metric to project (repeatable)")
	cmd.Flags().StringSliceVar(&groupBy, "group-by", nil, "MODEL__COLUMN dimension to group by (repeatable)")
	cmd.Flags().StringSliceVar(&filters, "filter", nil, "filter predicate (repeatable)")
	cmd.Flags().StringSliceVar(&orderBy, "order-by", nil, "MODEL__COLUMN or metric to order by (repeatable)")
	cmd.Flags().StringSliceVar(&joins, "join", nil, "explicit join clause (at most one)")
	cmd.Flags().IntVar(&limit, "limit", 0, "row limit")
	cmd.Flags().BoolVar(&inlineCTEs, "inline-ctes", false, "inline CTEs as nested subqueries instead of a WITH clause")

	return cmd
}
