package compose

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// moveGroupsToMetrics ensures every agg-layer GROUP BY column is also
// projected by the uppermost layer; a column a query groups by but
// never selects would otherwise silently vanish from the output.
func moveGroupsToMetrics(doc *ir.Document) {
	agg := doc.Layer(ir.Agg)
	uppermost := doc.Uppermost()
	for _, g := range agg.Groups {
		name := sqlast.NameOf(g)
		if name == "" {
			continue
		}
		uppermost.AddMetric(sqlast.NewColumn("", name))
	}
}
