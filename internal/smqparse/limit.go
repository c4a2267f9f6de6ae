package smqparse

import "github.com/rkddus222/smqc/internal/ir"

// parseLimit lowers the SMQ limit clause onto the deriv layer.
func parseLimit(doc *ir.Document, limit *int) {
	if limit == nil {
		return
	}
	n := *limit
	doc.Layer(ir.Deriv).Limit = &n
}
