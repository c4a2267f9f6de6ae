package sqlwrite

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// routeFilters partitions layer's filters between WHERE and QUALIFY. A
// filter that directly embeds an aggregate or window call, or that
// references one of the layer's own aggregate-valued output aliases by
// name, is only evaluable once the layer's GROUP BY (or window pass)
// has run and goes to QUALIFY; every other filter is a plain row
// predicate and goes to WHERE.
func routeFilters(layer *ir.Layer) (where, qualify []sqlast.Expr) {
	aggNames := aggregateAliasNames(layer)
	for _, f := range layer.Filters {
		if containsAggregateOrWindow(f) || referencesNames(f, aggNames) {
			qualify = append(qualify, f)
			continue
		}
		where = append(where, f)
	}
	return where, qualify
}

// aggregateAliasNames returns the output names of every metric in
// layer whose underlying expression is aggregate- or window-valued.
func aggregateAliasNames(layer *ir.Layer) map[string]bool {
	names := make(map[string]bool)
	for _, e := range layer.Metrics {
		if isAggregateValued(e) {
			names[sqlast.NameOf(e)] = true
		}
	}
	return names
}

func containsAggregateOrWindow(e sqlast.Expr) bool {
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

func referencesNames(e sqlast.Expr, names map[string]bool) bool {
	if len(names) == 0 {
		return false
	}
	found := false
	sqlast.Walk(e, func(n sqlast.Node) bool {
		switch v := n.(type) {
		case *sqlast.Column:
			if v.Table == "" && names[v.Name] {
				found = true
				return false
			}
		case *sqlast.Identifier:
			if names[v.Name] {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// sortDimensionFirst reorders list so every plain projection precedes
// every aggregate- or window-valued one, preserving relative order
// within each group (spec.md §4.7's dimension-first ordering rule,
// applied to every layer's SELECT list).
func sortDimensionFirst(list []sqlast.Expr) []sqlast.Expr {
	out := make([]sqlast.Expr, 0, len(list))
	var aggs []sqlast.Expr
	for _, e := range list {
		if isAggregateValued(e) {
			aggs = append(aggs, e)
			continue
		}
		out = append(out, e)
	}
	return append(out, aggs...)
}

func isAggregateValued(e sqlast.Expr) bool {
	if a, ok := e.(*sqlast.Alias); ok {
		return containsAggregateOrWindow(a.Inner)
	}
	return containsAggregateOrWindow(e)
}
