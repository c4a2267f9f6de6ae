package compose

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// applyDialectQuoting marks every column reference across every layer
// as dialect-quoted. The formatter (sqlast.Format/FormatExpr) already
// quotes every identifier unconditionally per dialect, including the
// backtick family's reserved-character substitution, so this pass
// carries no rendering logic of its own; it exists so the metadata
// collector can distinguish a column the composer has fully resolved
// from one still awaiting resolution when it walks the final IR.
func applyDialectQuoting(doc *ir.Document, dialect sqlast.Dialect) {
	mark := func(list []sqlast.Expr) {
		for _, e := range list {
			sqlast.Walk(e, func(n sqlast.Node) bool {
				if col, ok := n.(*sqlast.Column); ok {
					col.Quoted = true
				}
				return true
			})
		}
	}
	for _, l := range allLayers(doc) {
		mark(l.Metrics)
		mark(l.Filters)
		mark(l.Groups)
		mark(ordersToExprs(l.Orders))
	}
}
