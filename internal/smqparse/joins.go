package smqparse

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// parseJoins lowers the SMQ joins clause (at most one element, enforced
// by SMQ.Validate) into an agg-layer join, surfacing every column
// referenced in the ON clause into its owning projection layer so the
// column-closure invariant holds once the writer assembles CTEs.
func parseJoins(m *manifest.Manifest, doc *ir.Document, texts []string) error {
	for _, text := range texts {
		join, err := sqlast.ParseJoinClause(text)
		if err != nil {
			return errInput("invalid join clause %q: %v", text, err)
		}

		leftName := join.Left.(*sqlast.Table).Name
		rightName := join.Right.(*sqlast.Table).Name
		if _, ok := m.Model(leftName); !ok {
			return errInput("join clause references unknown model %q", leftName)
		}
		if _, ok := m.Model(rightName); !ok {
			return errInput("join clause references unknown model %q", rightName)
		}

		for _, pair := range sqlast.ColumnPairs(join.On) {
			for _, col := range pair {
				if col.Table == "" {
					continue
				}
				doc.Layer(ir.Projection(col.Table)).AddMetric(sqlast.NewAlias(sqlast.NewColumn("", col.Name), col.Name))
			}
		}

		doc.Layer(ir.Agg).Joins = append(doc.Layer(ir.Agg).Joins, join)
	}
	return nil
}
