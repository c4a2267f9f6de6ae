package sqlwrite

import "github.com/rkddus222/smqc/internal/sqlast"

// Inline rewrites w into a single Select with every CTE substituted as
// a nested, aliased subquery and the WITH clause dropped entirely,
// grounded on original_source's inline_converter.py. CTEs are resolved
// in declaration order, so a later CTE that references an earlier one
// (the agg CTE referencing a projection CTE) picks up the earlier
// one's already-inlined body rather than the raw CTE reference.
func Inline(w *sqlast.With) *sqlast.Select {
	bodies := make(map[string]*sqlast.Select, len(w.CTEs))
	for _, cte := range w.CTEs {
		bodies[cte.Name] = inlineRefs(cte.Query, bodies)
	}
	return inlineRefs(w.Query, bodies)
}

// inlineRefs returns a shallow copy of sel with its FROM rewritten by
// inlineTableExpr; every other field is shared with the original.
func inlineRefs(sel *sqlast.Select, bodies map[string]*sqlast.Select) *sqlast.Select {
	if sel == nil {
		return nil
	}
	out := *sel
	out.From = inlineTableExpr(sel.From, bodies)
	return &out
}

// inlineTableExpr replaces a bare Table reference to a known CTE name
// with a Subquery wrapping that CTE's body, keeping the CTE's own name
// as the subquery's alias so qualified column references elsewhere in
// the tree keep resolving. Joins are walked recursively on both sides.
func inlineTableExpr(t sqlast.TableExpr, bodies map[string]*sqlast.Select) sqlast.TableExpr {
	switch v := t.(type) {
	case *sqlast.Table:
		if body, ok := bodies[v.Name]; ok {
			return &sqlast.Subquery{Select: body, Alias: v.Name}
		}
		return v
	case *sqlast.Join:
		return &sqlast.Join{
			Left:  inlineTableExpr(v.Left, bodies),
			Right: inlineTableExpr(v.Right, bodies),
			On:    v.On,
			Kind:  v.Kind,
		}
	default:
		return t
	}
}
