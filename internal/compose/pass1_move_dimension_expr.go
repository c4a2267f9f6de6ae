package compose

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// moveDimensionExprToDeriv ensures that, whenever a deriv layer exists,
// every metric already placed in agg also surfaces as a bare-column
// reference in deriv. Deriv is the uppermost SELECT once it exists, so
// anything the parser left only in agg (a simple metric, a bare
// dimension) would otherwise never reach the final projection.
func moveDimensionExprToDeriv(doc *ir.Document) {
	if !doc.Has(ir.Deriv) {
		return
	}
	agg := doc.Layer(ir.Agg)
	deriv := doc.Layer(ir.Deriv)
	for _, e := range agg.Metrics {
		name := sqlast.NameOf(e)
		if name == "" {
			continue
		}
		deriv.AddMetric(sqlast.NewColumn("", name))
	}
}
