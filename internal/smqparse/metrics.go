package smqparse

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// parseMetrics lowers the SMQ metrics clause into the IR: qualified
// dimension/measure refs are projected bare into their owning model's
// layer; bare metric-name refs are expanded and placed into agg or
// deriv depending on whether their expansion touches an aggregate
// result.
func parseMetrics(m *manifest.Manifest, doc *ir.Document, texts []string) error {
	for _, text := range texts {
		r := parseRef(text)

		if r.Qualified {
			model, dim, meas, err := resolveQualified(m, r)
			if err != nil {
				return err
			}
			layer := doc.Layer(ir.Projection(model.Name))
			if dim != nil {
				layer.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", dim.DimensionExpr()), dim.Name))
				agg := doc.Layer(ir.Agg)
				agg.AddMetric(sqlast.NewColumn("", dim.Name))
				agg.AddGroup(sqlast.NewColumn("", dim.Name))
			} else {
				layer.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", meas.MeasureExpr()), meas.Name))
				doc.Layer(ir.Agg).AddMetric(sqlast.NewAlias(AggregateExpr(*meas), meas.Name))
			}
			continue
		}

		exp, err := ExpandMetric(m, r.Name, nil)
		if err != nil {
			return err
		}
		for _, t := range exp.TouchedMeas {
			layer := doc.Layer(ir.Projection(t.Model))
			layer.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", t.Measure.MeasureExpr()), t.Measure.Name))
		}

		target := ir.Agg
		if exp.NeedsDeriv {
			target = ir.Deriv
		}
		doc.Layer(target).AddMetric(sqlast.NewAlias(exp.Expr, r.Name))
	}
	return nil
}
