package compose

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/smqparse"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// completeDerivPrerequisites ensures every bare-name column deriv
// references by expecting it to already exist in agg actually does: a
// deriv expression can reference a metric, a measure, or a dimension by
// name without the parser itself having projected it into agg (e.g. a
// metric used only inside a filter predicate). Anything missing is
// synthesized by recursively expanding it the same way the parser
// expands a bare metrics-clause entry.
func completeDerivPrerequisites(doc *ir.Document, m *manifest.Manifest) error {
	if !doc.Has(ir.Deriv) {
		return nil
	}
	deriv := doc.Layer(ir.Deriv)
	agg := doc.Layer(ir.Agg)

	cols := collectColumns(deriv.Metrics, deriv.Filters, ordersToExprs(deriv.Orders))
	for _, col := range cols {
		if col.Table != "" {
			// Qualified references name a projection layer directly and
			// are handled by completeAggPrerequisites instead.
			continue
		}
		if layerHasName(agg, col.Name) {
			continue
		}
		if err := resolveIntoAgg(doc, agg, m, col.Name); err != nil {
			return err
		}
	}
	return nil
}

// resolveIntoAgg synthesizes an agg-layer (and, where needed,
// projection-layer) entry for name: first trying it as a global metric
// (recursively expanded), then as a measure or dimension on any
// semantic model.
func resolveIntoAgg(doc *ir.Document, agg *ir.Layer, m *manifest.Manifest, name string) error {
	if _, ok := m.MetricByName(name); ok {
		exp, err := smqparse.ExpandMetric(m, name, nil)
		if err != nil {
			return err
		}
		for _, t := range exp.TouchedMeas {
			doc.Layer(ir.Projection(t.Model)).AddMetric(sqlast.NewAlias(sqlast.NewColumn("", t.Measure.MeasureExpr()), t.Measure.Name))
		}
		agg.AddMetric(sqlast.NewAlias(exp.Expr, name))
		return nil
	}

	for _, sm := range m.SemanticModels {
		if meas, ok := sm.Measure(name); ok {
			doc.Layer(ir.Projection(sm.Name)).AddMetric(sqlast.NewAlias(sqlast.NewColumn("", meas.MeasureExpr()), meas.Name))
			agg.AddMetric(sqlast.NewAlias(smqparse.AggregateExpr(*meas), name))
			return nil
		}
		if dim, ok := sm.Dimension(name); ok {
			doc.Layer(ir.Projection(sm.Name)).AddMetric(sqlast.NewAlias(sqlast.NewColumn("", dim.DimensionExpr()), dim.Name))
			agg.AddMetric(sqlast.NewColumn("", dim.Name))
			agg.AddGroup(sqlast.NewColumn("", dim.Name))
			return nil
		}
	}
	return errCompose("deriv layer references unknown name %q", name)
}
