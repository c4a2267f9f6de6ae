package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureStdout redirects os.Stdout to a pipe and returns a function
// that restores stdout and returns the captured output.
func captureStdout(t *testing.T) func() string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	return func() string {
		_ = w.Close()
		<-done
		os.Stdout = old
		return buf.String()
	}
}

// writeManifestFixture writes a two-model manifest (orders, customers)
// with one simple and one ratio metric, mirroring
// internal/manifest's own test fixture.
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
  - name: customer_region
    type: string
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
  - name: order_count
    type: bigint
    agg: count
    expr: order_id
metrics:
  - name: total_revenue
    type: simple
    expr: order_total
  - name: avg_order_value
    type: ratio
    expr: "total_revenue / order_count"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "semantic_models", "orders.yml"), []byte(orders), 0o644))
}

// appendIsolatedModel adds a "shipments" model sharing no entity with
// orders or customers, so the three models never form a single
// connected join graph.
func appendIsolatedModel(dir string) error {
	shipments := `
name: shipments
node_relation: "SOURCE('crm.orders')"
entities:
  - name: shipment_id
    type: primary
dimensions:
  - name: carrier
    type: string
`
	return os.WriteFile(filepath.Join(dir, "semantic_models", "shipments.yml"), []byte(shipments), 0o644)
}
