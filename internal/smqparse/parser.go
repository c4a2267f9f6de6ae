package smqparse

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
)

// Parse lowers smq into a fresh per-layer IR document against m,
// running the six clause routines in SMQ field order: metrics,
// group_by, filters, order_by, limit, joins.
func Parse(m *manifest.Manifest, smq SMQ) (*ir.Document, error) {
	if err := smq.Validate(); err != nil {
		return nil, err
	}

	doc := ir.NewDocument()

	if err := parseMetrics(m, doc, smq.Metrics); err != nil {
		return nil, err
	}
	if err := parseGroupBy(m, doc, smq.GroupBy); err != nil {
		return nil, err
	}
	if err := parseFilters(m, doc, smq.Filters); err != nil {
		return nil, err
	}
	if err := parseOrderBy(m, doc, smq.OrderBy); err != nil {
		return nil, err
	}
	parseLimit(doc, smq.Limit)
	if err := parseJoins(m, doc, smq.Joins); err != nil {
		return nil, err
	}

	return doc, nil
}
