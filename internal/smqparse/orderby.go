package smqparse

import (
	"strings"

	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// parseOrderBy lowers the SMQ order_by clause. A leading "-" marks
// descending order. A bare entry names a metric, expanded the same way
// the metrics clause does and placed in deriv.orders; a qualified entry
// is a plain column reference.
func parseOrderBy(m *manifest.Manifest, doc *ir.Document, texts []string) error {
	for _, text := range texts {
		desc := false
		name := text
		if strings.HasPrefix(name, "-") {
			desc = true
			name = name[1:]
		}

		r := parseRef(name)
		if r.Qualified {
			_, dim, meas, err := resolveQualified(m, r)
			if err != nil {
				return err
			}
			colName := r.Column
			if dim != nil {
				colName = dim.Name
			} else if meas != nil {
				colName = meas.Name
			}
			doc.Layer(ir.Agg).Orders = append(doc.Layer(ir.Agg).Orders, &sqlast.Order{
				Expr: sqlast.NewColumn("", colName), Desc: desc,
			})
			continue
		}

		exp, err := ExpandMetric(m, r.Name, nil)
		if err != nil {
			return err
		}
		for _, t := range exp.TouchedMeas {
			doc.Layer(ir.Projection(t.Model)).AddMetric(sqlast.NewAlias(sqlast.NewColumn("", t.Measure.MeasureExpr()), t.Measure.Name))
		}
		doc.Layer(ir.Deriv).Orders = append(doc.Layer(ir.Deriv).Orders, &sqlast.Order{
			Expr: sqlast.NewColumn("", r.Name), Desc: desc,
		})
	}
	return nil
}
