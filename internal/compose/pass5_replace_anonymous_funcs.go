package compose

import (
	"strings"

	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// canonicalAggName maps the recognized aggregate spellings an anonymous
// function call might carry (case-insensitively) to their canonical SQL
// name.
var canonicalAggName = map[string]string{
	"AVG":     "AVG",
	"AVERAGE": "AVG",
	"SUM":     "SUM",
	"MAX":     "MAX",
	"MIN":     "MIN",
	"COUNT":   "COUNT",
}

// replaceAnonymousFuncs rewrites every FuncAnonymous call across every
// layer whose name matches a recognized aggregate spelling into a
// properly-kinded FuncAggregate node. The SMQ parser produces anonymous
// calls for any function name it doesn't itself resolve; this pass is
// the only place that promotes one to an aggregate, so the later passes
// that look for FuncAggregate (group parity, pass 8) see the promoted
// node. Push-down (pass 2) runs before this pass and only hoists calls
// that were already FuncAggregate.
func replaceAnonymousFuncs(doc *ir.Document) {
	promote := func(node sqlast.Expr) sqlast.Expr {
		fn, ok := node.(*sqlast.Func)
		if !ok || fn.Kind != sqlast.FuncAnonymous {
			return node
		}
		canon, ok := canonicalAggName[strings.ToUpper(fn.Name)]
		if !ok {
			return node
		}
		return &sqlast.Func{Name: canon, Kind: sqlast.FuncAggregate, Args: fn.Args}
	}

	for _, l := range allLayers(doc) {
		rewriteInPlace(l.Metrics, promote)
		rewriteInPlace(l.Filters, promote)
		rewriteOrdersInPlace(l.Orders, promote)
	}
}
