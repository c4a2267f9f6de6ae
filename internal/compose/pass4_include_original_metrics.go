package compose

import (
	"strings"

	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// includeOriginalMetrics guarantees that every metric the user
// literally listed in the SMQ's metrics clause appears in the
// uppermost layer's projection, even if an earlier pass only surfaced
// it indirectly (e.g. as a join key or group-by column). A qualified
// MODEL__COLUMN reference is reduced to its bare column name, matching
// how the rest of the pipeline names projected columns.
func includeOriginalMetrics(doc *ir.Document, originalMetrics []string) {
	uppermost := doc.Uppermost()
	for _, raw := range originalMetrics {
		name := raw
		if idx := strings.LastIndex(raw, "__"); idx >= 0 {
			name = raw[idx+2:]
		}
		uppermost.AddMetric(sqlast.NewColumn("", name))
	}
}
