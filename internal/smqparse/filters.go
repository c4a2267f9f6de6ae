package smqparse

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// parseFilters lowers the SMQ filters clause. Each entry is parsed as a
// predicate; qualified MODEL__COLUMN identifiers inside it are rewritten
// to bare Column references. A predicate that touches a metric name is
// placed in deriv (it can only be evaluated after aggregation); a
// predicate touching columns from exactly one projection layer is
// pushed down to that layer; anything else (multiple models, no metric)
// falls back to deriv.
func parseFilters(m *manifest.Manifest, doc *ir.Document, texts []string) error {
	for _, text := range texts {
		pred, err := sqlast.ParseExpr(text)
		if err != nil {
			return errInput("unparsable filter %q: %v", text, err)
		}

		models := map[string]bool{}
		isMetricRef := false
		var rewriteErr error
		rewritten := sqlast.TransformExpr(pred, func(e sqlast.Expr) sqlast.Expr {
			ident, ok := e.(*sqlast.Identifier)
			if !ok {
				return e
			}
			r := parseRef(ident.Name)
			if r.Qualified {
				model, dim, meas, err := resolveQualified(m, r)
				if err != nil {
					rewriteErr = err
					return e
				}
				models[model.Name] = true
				if dim != nil {
					return sqlast.NewColumn("", dim.Name)
				}
				return sqlast.NewColumn("", meas.Name)
			}
			if _, ok := m.MetricByName(r.Name); ok {
				isMetricRef = true
				return ident
			}
			rewriteErr = errInput("filter references unknown name %q", ident.Name)
			return e
		})
		if rewriteErr != nil {
			return rewriteErr
		}

		rewriteSubqueryFroms(doc, rewritten)

		switch {
		case isMetricRef:
			doc.Layer(ir.Deriv).AddFilter(rewritten)
		case len(models) == 1:
			for model := range models {
				doc.Layer(ir.Projection(model)).AddFilter(rewritten)
			}
		default:
			doc.Layer(ir.Deriv).AddFilter(rewritten)
		}
	}
	return nil
}

// rewriteSubqueryFroms walks e for Subquery nodes and, for each whose
// FROM is a bare table, makes sure a projection layer named after that
// table exists. It does not rename the table itself; the subquery's
// FROM keeps the semantic-model name it was written with.
func rewriteSubqueryFroms(doc *ir.Document, e sqlast.Expr) {
	sqlast.Walk(e, func(n sqlast.Node) bool {
		sub, ok := n.(*sqlast.Subquery)
		if !ok {
			return true
		}
		if tbl, ok := sub.Select.From.(*sqlast.Table); ok {
			doc.Layer(ir.Projection(tbl.Name)) // ensure the layer exists even if unreferenced elsewhere
		}
		return true
	})
}
