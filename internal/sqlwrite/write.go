// Package sqlwrite assembles the composed per-layer IR into a single
// WITH-clause statement: one CTE per projection layer, an agg CTE when
// a deriv layer sits above it, and a final SELECT over the uppermost
// layer.
//
// Every column reference inside doc is expected to already resolve
// against the layer that owns it: internal/compose's prerequisite
// passes (7 and 9) guarantee that before the pipeline returns, so
// unlike the original composer's SQL writer, this package never needs
// to pull a missing column down into a lower layer or guess which
// joined table a bare column belongs to by heuristic lookup - that
// work already happened upstream.
package sqlwrite

import (
	"fmt"

	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// Write renders doc into a WITH-clause statement for dialect. doc must
// already have passed through internal/compose's twelve-pass pipeline.
func Write(doc *ir.Document, m *manifest.Manifest, dialect sqlast.Dialect) (*sqlast.With, error) {
	projections := doc.ProjectionLayers()
	if len(projections) == 0 {
		return nil, fmt.Errorf("sqlwrite: document has no projection layers")
	}

	w := &sqlast.With{}
	for _, layer := range projections {
		sel, err := projectionSelect(layer, m)
		if err != nil {
			return nil, err
		}
		w.CTEs = append(w.CTEs, sqlast.CTE{Name: layer.ID.Model, Query: sel})
	}

	agg := doc.Layer(ir.Agg)
	aggFrom, err := aggFromClause(agg, projections)
	if err != nil {
		return nil, err
	}

	if doc.Has(ir.Deriv) {
		w.CTEs = append(w.CTEs, sqlast.CTE{Name: "agg", Query: layerSelect(agg, aggFrom, false)})
		deriv := doc.Layer(ir.Deriv)
		w.Query = layerSelect(deriv, &sqlast.Table{Name: "agg"}, true)
		return w, nil
	}

	w.Query = layerSelect(agg, aggFrom, true)
	return w, nil
}

// projectionSelect builds the row-level SELECT for one projection
// layer: its physical source table, every filter as a plain WHERE
// predicate (a projection layer never sees an aggregate or window
// call), and its own GROUP BY if the parser populated one directly.
func projectionSelect(layer *ir.Layer, m *manifest.Manifest) (*sqlast.Select, error) {
	sm, ok := m.Model(layer.ID.Model)
	if !ok {
		return nil, fmt.Errorf("sqlwrite: layer references unknown model %q", layer.ID.Model)
	}
	db, schema, table := sm.PhysicalTable()
	return &sqlast.Select{
		List:    sortDimensionFirst(layer.Metrics),
		From:    &sqlast.Table{Database: db, Schema: schema, Name: table},
		Where:   combine(layer.Filters),
		GroupBy: layer.Groups,
	}, nil
}

// aggFromClause returns the agg layer's FROM: a bare reference to the
// single projection CTE when only one model is involved (no alias,
// matching the single-table-projection-layer rule), or the folded
// join tree synthesized by internal/joinplan otherwise.
func aggFromClause(agg *ir.Layer, projections []*ir.Layer) (sqlast.TableExpr, error) {
	if len(projections) == 1 {
		return &sqlast.Table{Name: projections[0].ID.Model}, nil
	}
	if len(agg.Joins) == 0 {
		return nil, fmt.Errorf("sqlwrite: %d projection layers require a join plan, found none", len(projections))
	}
	return foldJoins(agg.Joins), nil
}

// foldJoins turns the ordered join-step list the join planner produced
// into a single left-deep join tree: each step's Left table is already
// reachable through the tree accumulated so far, since the planner
// emits steps in BFS (parent-before-child) order.
func foldJoins(joins []*sqlast.Join) sqlast.TableExpr {
	from := joins[0].Left
	for _, j := range joins {
		from = &sqlast.Join{Left: from, Right: j.Right, On: j.On, Kind: j.Kind}
	}
	return from
}

// layerSelect builds the SELECT for the agg or deriv layer. final
// controls whether the layer's own ORDER BY and LIMIT are attached:
// only the uppermost layer's ordering and row limit reach the rendered
// statement, an intermediate CTE carries neither.
func layerSelect(layer *ir.Layer, from sqlast.TableExpr, final bool) *sqlast.Select {
	where, qualify := routeFilters(layer)
	sel := &sqlast.Select{
		List:    sortDimensionFirst(layer.Metrics),
		From:    from,
		Where:   combine(where),
		GroupBy: layer.Groups,
		Qualify: combine(qualify),
	}
	if final {
		sel.OrderBy = layer.Orders
		sel.Limit = layer.Limit
	}
	return sel
}

// combine AND-combines filters into a single predicate, matching the
// writer's "multiple filters AND-combined" rule; an individual OR
// predicate already parenthesizes itself at format time.
func combine(filters []sqlast.Expr) sqlast.Expr {
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	default:
		return sqlast.NewAnd(filters...)
	}
}
