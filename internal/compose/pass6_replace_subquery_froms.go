package compose

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// replaceSubqueryFroms resolves the placeholder FROM of every predicate
// subquery (e.g. a filter's `IN (SELECT ... FROM model)` clause) from a
// bare semantic-model name to its physical table, and drops the
// now-unnecessary model-name qualifier from columns inside that
// subquery, since a single-table subquery needs no qualification.
func replaceSubqueryFroms(doc *ir.Document, m *manifest.Manifest) {
	resolve := func(node sqlast.Expr) sqlast.Expr {
		sub, ok := node.(*sqlast.Subquery)
		if !ok || sub.Select == nil {
			return node
		}
		resolveSubqueryFrom(sub.Select, m)
		return sub
	}

	for _, l := range allLayers(doc) {
		rewriteInPlace(l.Metrics, resolve)
		rewriteInPlace(l.Filters, resolve)
	}
}

func resolveSubqueryFrom(sel *sqlast.Select, m *manifest.Manifest) {
	tbl, ok := sel.From.(*sqlast.Table)
	if !ok {
		return
	}
	sm, ok := m.Model(tbl.Name)
	if !ok {
		return
	}
	modelName := tbl.Name
	db, schema, phys := sm.PhysicalTable()
	sel.From = &sqlast.Table{Database: db, Schema: schema, Name: phys}
	dropTablePrefix(sel, modelName)
}

// dropTablePrefix unqualifies every column in sel referencing
// modelName, since the subquery's FROM no longer carries that alias.
func dropTablePrefix(sel *sqlast.Select, modelName string) {
	strip := func(node sqlast.Expr) sqlast.Expr {
		col, ok := node.(*sqlast.Column)
		if !ok || col.Table != modelName {
			return node
		}
		return sqlast.NewColumn("", col.Name)
	}
	rewriteInPlace(sel.List, strip)
	if sel.Where != nil {
		sel.Where = sqlast.TransformExpr(sel.Where, strip)
	}
	rewriteInPlace(sel.GroupBy, strip)
}
