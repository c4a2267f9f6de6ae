package compose

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// aliasUnaliasedUppermostExprs gives every compound expression in the
// uppermost layer's projection an explicit alias, named after its own
// rendered form, matching how a dialect that has no implicit column
// name for an unaliased arithmetic expression would otherwise expose
// it. A bare Column, Identifier, or already-aliased expression is left
// untouched since it already carries an output name.
func aliasUnaliasedUppermostExprs(doc *ir.Document, dialect sqlast.Dialect) {
	layer := doc.Uppermost()
	for i, e := range layer.Metrics {
		switch e.(type) {
		case *sqlast.Alias, *sqlast.Column, *sqlast.Identifier:
			continue
		}
		layer.Metrics[i] = sqlast.NewAlias(e, sqlast.FormatExpr(dialect, e))
	}
}
