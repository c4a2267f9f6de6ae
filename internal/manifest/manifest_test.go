package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManifestFixture(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "semantic_models"), 0o755))

	sources := `
sources:
  - name: crm
    tables:
      - name: customers
        database: analytics
        schema: public
        table: customers
      - name: orders
        database: analytics
        schema: public
        table: orders
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sources.yml"), []byte(sources), 0o644))

	customers := `
name: customers
node_relation: "SOURCE('crm.customers')"
entities:
  - name: customer_id
    type: primary
dimensions:
  - name: region
    type: string
measures:
  - name: lifetime_value
    type: decimal
    agg: sum
primary_entity: customer_id
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "semantic_models", "customers.yml"), []byte(customers), 0o644))

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
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "semantic_models", "orders.yml"), []byte(orders), 0o644))
}

func TestAssemble_Success(t *testing.T) {
	dir := t.TempDir()
	writeManifestFixture(t, dir)

	m, err := Assemble(dir)
	require.NoError(t, err)
	require.Len(t, m.SemanticModels, 2)
	require.Len(t, m.Metrics, 1)

	orders, ok := m.Model("orders")
	require.True(t, ok)
	_, ok = orders.Entity("customer_id")
	require.True(t, ok)

	met, ok := m.MetricByName("total_revenue")
	require.True(t, ok)
	require.Equal(t, MetricSimple, met.MetricType)
	require.Equal(t, "order_total", met.InputMeasure)
}

func TestAssemble_DuplicateMetricName(t *testing.T) {
	dir := t.TempDir()
	writeManifestFixture(t, dir)

	dup := `
name: other
node_relation: "SOURCE('crm.orders')"
measures:
  - name: x
    type: integer
    agg: count
metrics:
  - name: total_revenue
    type: simple
    expr: x
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "semantic_models", "other.yml"), []byte(dup), 0o644))

	_, err := Assemble(dir)
	require.Error(t, err)
}

func TestAssemble_InvalidNodeRelation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "semantic_models"), 0o755))
	bad := `
name: broken
node_relation: "not-a-source-ref"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "semantic_models", "broken.yml"), []byte(bad), 0o644))

	_, err := Assemble(dir)
	require.Error(t, err)
}
