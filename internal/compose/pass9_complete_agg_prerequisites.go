package compose

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// completeAggPrerequisites ensures every qualified MODEL.COLUMN column
// agg references is actually projected by that model's layer: the
// parser always projects what it resolves itself, but a pass upstream
// (a synthesized join key, a pushed-down aggregate argument) can
// introduce a qualified reference the projection layer never saw.
// Missing entries are resolved as a dimension, measure, or entity on
// the named model, in that order.
func completeAggPrerequisites(doc *ir.Document, m *manifest.Manifest) error {
	agg := doc.Layer(ir.Agg)
	cols := collectColumns(agg.Metrics, agg.Filters, agg.Groups, ordersToExprs(agg.Orders))

	for _, col := range cols {
		if col.Table == "" {
			continue
		}
		layer := doc.Layer(ir.Projection(col.Table))
		if layerHasName(layer, col.Name) {
			continue
		}
		sm, ok := m.Model(col.Table)
		if !ok {
			return errCompose("agg layer references unknown model %q", col.Table)
		}
		if dim, ok := sm.Dimension(col.Name); ok {
			layer.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", dim.DimensionExpr()), dim.Name))
			continue
		}
		if meas, ok := sm.Measure(col.Name); ok {
			layer.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", meas.MeasureExpr()), meas.Name))
			continue
		}
		if ent, ok := sm.Entity(col.Name); ok {
			layer.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", ent.EntityExpr()), ent.Name))
			continue
		}
		return errCompose("agg layer references unknown column %q on model %q", col.Name, col.Table)
	}
	return nil
}
