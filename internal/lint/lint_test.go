package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "semantic_models"), 0o755))

	sources := `
sources:
  - name: crm
    tables:
      - name: orders
        database: analytics
        schema: public
        table: orders
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sources.yml"), []byte(sources), 0o644))

	orders := `
name: orders
node_relation: "SOURCE('crm.orders')"
entities:
  - name: order_id
    type: primary
  - name: customer_id
    type: foreign
dimensions:
  - name: order_date
    type: date
measures:
  - name: order_total
    type: decimal
    agg: sum
metrics:
  - name: total_revenue
    type: simple
    expr: order_total
  - name: bad_ref
    type: simple
    expr: order_totl
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "semantic_models", "not_orders.yml"), []byte(orders), 0o644))
}

func TestLint_SurfacesViolationsWithoutFailing(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)

	report, err := Lint(dir)
	require.NoError(t, err)
	require.NotEmpty(t, report.Violations)

	var sawFilenameMismatch, sawOrphanForeign, sawDidYouMean bool
	for _, v := range report.Violations {
		switch v.RuleID {
		case "SEM501":
			sawFilenameMismatch = true
		case "SEM502":
			sawOrphanForeign = true
		case "SEM014":
			sawDidYouMean = true
			require.Contains(t, v.Message, "did you mean")
		}
	}
	require.True(t, sawFilenameMismatch, "expected SEM501 for not_orders.yml vs model orders")
	require.True(t, sawOrphanForeign, "expected SEM502 for unmatched foreign entity customer_id")
	require.True(t, sawDidYouMean, "expected SEM014 did-you-mean suggestion for order_totl")
}

func TestLint_EmptyDirHasNoModelViolations(t *testing.T) {
	dir := t.TempDir()
	report, err := Lint(dir)
	require.NoError(t, err)
	require.Empty(t, report.Filter(SeverityError))
}

func TestReport_Filter(t *testing.T) {
	r := &Report{Violations: []Violation{
		{Severity: SeverityInfo, RuleID: "SEM600"},
		{Severity: SeverityWarning, RuleID: "SEM501"},
		{Severity: SeverityError, RuleID: "SEM006"},
	}}
	require.Len(t, r.Filter(SeverityWarning), 2)
	require.True(t, r.HasErrors())
}
