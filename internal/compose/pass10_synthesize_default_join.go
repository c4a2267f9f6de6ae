package compose

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/joinplan"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// synthesizeDefaultJoin builds the LEFT-JOIN spanning tree connecting
// every projection layer the query touches, when the SMQ supplied no
// explicit join of its own. It surfaces every synthesized key-pair
// column into its owning projection layer, matching how an
// explicit SMQ join clause surfaces its ON-clause columns.
func synthesizeDefaultJoin(doc *ir.Document, m *manifest.Manifest) error {
	agg := doc.Layer(ir.Agg)
	models := doc.ProjectionLayerIDs()
	if len(models) < 2 || len(agg.Joins) > 0 {
		return nil
	}

	plan, err := joinplan.Build(models, m)
	if err != nil {
		return err
	}

	agg.Joins = append(agg.Joins, plan.ToJoins()...)
	for _, step := range plan.Steps {
		for _, kp := range step.KeyPairs {
			doc.Layer(ir.Projection(step.Left)).AddMetric(sqlast.NewAlias(sqlast.NewColumn("", kp.LeftExpr), kp.LeftExpr))
			doc.Layer(ir.Projection(step.Right)).AddMetric(sqlast.NewAlias(sqlast.NewColumn("", kp.RightExpr), kp.RightExpr))
		}
	}
	return nil
}
