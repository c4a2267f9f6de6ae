package smqparse

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// parseGroupBy lowers the SMQ group_by clause: every entry must be a
// qualified dimension reference; it is projected in its owning model's
// layer and grouped on at the agg layer.
func parseGroupBy(m *manifest.Manifest, doc *ir.Document, texts []string) error {
	for _, text := range texts {
		r := parseRef(text)
		if !r.Qualified {
			return errInput("group_by entry %q must be a qualified MODEL__COLUMN reference", text)
		}
		model, dim, meas, err := resolveQualified(m, r)
		if err != nil {
			return err
		}
		if meas != nil {
			return errInput("group_by entry %q refers to a measure, not a dimension", text)
		}

		layer := doc.Layer(ir.Projection(model.Name))
		layer.AddMetric(sqlast.NewAlias(sqlast.NewColumn("", dim.DimensionExpr()), dim.Name))

		doc.Layer(ir.Agg).AddGroup(sqlast.NewColumn("", dim.Name))
	}
	return nil
}
