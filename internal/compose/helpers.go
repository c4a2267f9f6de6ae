package compose

import (
	"fmt"

	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// Error is a structural failure discovered while completing or
// validating a layer's prerequisites: a reference to an unknown model,
// column, or name that no measure, dimension, entity, or metric
// resolves to.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func errCompose(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// allLayers returns every layer in the document: the projection layers
// in document order, then agg, then deriv (whichever of the latter two
// exist).
func allLayers(doc *ir.Document) []*ir.Layer {
	layers := doc.ProjectionLayers()
	if doc.Has(ir.Agg) {
		layers = append(layers, doc.Layer(ir.Agg))
	}
	if doc.Has(ir.Deriv) {
		layers = append(layers, doc.Layer(ir.Deriv))
	}
	return layers
}

// ordersToExprs unwraps an Order slice into a plain Expr slice for
// passes that only care about the expressions being ordered on.
func ordersToExprs(orders []*sqlast.Order) []sqlast.Expr {
	out := make([]sqlast.Expr, 0, len(orders))
	for _, o := range orders {
		if o != nil && o.Expr != nil {
			out = append(out, o.Expr)
		}
	}
	return out
}

// rewriteInPlace applies fn bottom-up to every expression in list,
// replacing it in place.
func rewriteInPlace(list []sqlast.Expr, fn sqlast.ExprTransform) {
	for i, e := range list {
		list[i] = sqlast.TransformExpr(e, fn)
	}
}

// rewriteOrdersInPlace applies fn to every Order's expression in place.
func rewriteOrdersInPlace(orders []*sqlast.Order, fn sqlast.ExprTransform) {
	for _, o := range orders {
		if o != nil && o.Expr != nil {
			o.Expr = sqlast.TransformExpr(o.Expr, fn)
		}
	}
}

// collectColumns returns every *Column reachable from any expression in
// any of lists, in document order.
func collectColumns(lists ...[]sqlast.Expr) []*sqlast.Column {
	var out []*sqlast.Column
	for _, list := range lists {
		for _, e := range list {
			for _, n := range sqlast.FindAll(e, func(n sqlast.Node) bool {
				_, ok := n.(*sqlast.Column)
				return ok
			}) {
				out = append(out, n.(*sqlast.Column))
			}
		}
	}
	return out
}

// layerHasName reports whether layer's Metrics list already contains an
// entry whose output name is name.
func layerHasName(layer *ir.Layer, name string) bool {
	for _, e := range layer.Metrics {
		if sqlast.NameOf(e) == name {
			return true
		}
	}
	return false
}

// containsAggregate reports whether e contains an aggregate or window
// function call anywhere in its tree; such expressions are exempt from
// the GROUP BY parity rule.
func containsAggregate(e sqlast.Expr) bool {
	found := false
	sqlast.Walk(e, func(n sqlast.Node) bool {
		if fn, ok := n.(*sqlast.Func); ok && (fn.Kind == sqlast.FuncAggregate || fn.Kind == sqlast.FuncWindow) {
			found = true
			return false
		}
		return true
	})
	return found
}

// groupableExpr strips an Alias wrapper, since GROUP BY must reference
// the underlying expression rather than its output name.
func groupableExpr(e sqlast.Expr) sqlast.Expr {
	if a, ok := e.(*sqlast.Alias); ok {
		return a.Inner
	}
	return e
}
