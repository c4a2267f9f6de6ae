package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLintCmd_CleanManifest_NoErrorsAndSucceeds(t *testing.T) {
	dir := t.TempDir()
	writeManifestFixture(t, dir)

	root := NewRootCmd()
	root.SetArgs([]string{"lint", "--manifest-dir", dir})

	restore := captureStdout(t)
	err := root.Execute()
	restore()

	require.NoError(t, err)
}

func TestLintCmd_BrokenManifest_ReturnsErrorAndReportsViolations(t *testing.T) {
	dir := t.TempDir()
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

	broken := `
name: orders
node_relation: "SOURCE('crm.orders')"
entities:
  - name: order_id
    type: not-a-real-type
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "semantic_models", "orders.yml"), []byte(broken), 0o644))

	root := NewRootCmd()
	root.SetArgs([]string{"lint", "--manifest-dir", dir, "--output", "json"})

	restore := captureStdout(t)
	err := root.Execute()
	out := restore()

	require.Error(t, err)
	require.Contains(t, out, "SEM007")
}
