package compose

import "github.com/rkddus222/smqc/internal/ir"

// checkGroupSelectParity enforces that every non-aggregate expression
// selected by agg also appears in its GROUP BY list, the way a correct
// hand-written aggregation query must: an aggregate or window call is
// exempt, everything else needs a matching group entry or the query
// would be invalid SQL.
func checkGroupSelectParity(doc *ir.Document) {
	agg := doc.Layer(ir.Agg)
	for _, e := range agg.Metrics {
		if containsAggregate(e) {
			continue
		}
		agg.AddGroup(groupableExpr(e))
	}
}
