package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileCmd_SimpleMetric_PrintsSQL(t *testing.T) {
	dir := t.TempDir()
	writeManifestFixture(t, dir)

	root := NewRootCmd()
	root.SetArgs([]string{"compile", "--manifest-dir", dir, "--metric", "total_revenue"})

	restore := captureStdout(t)
	require.NoError(t, root.Execute())
	out := restore()

	require.Contains(t, out, "total_revenue")
}

func TestCompileCmd_JSONOutput_IncludesSQLAndColumns(t *testing.T) {
	dir := t.TempDir()
	writeManifestFixture(t, dir)

	root := NewRootCmd()
	root.SetArgs([]string{"compile", "--manifest-dir", dir, "--metric", "total_revenue", "--output", "json"})

	restore := captureStdout(t)
	require.NoError(t, root.Execute())
	out := restore()

	require.True(t, strings.Contains(out, `"sql"`))
	require.True(t, strings.Contains(out, `"columns"`))
	require.True(t, strings.Contains(out, `"trace_id"`))
}

func TestCompileCmd_UnknownMetric_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeManifestFixture(t, dir)

	root := NewRootCmd()
	root.SetArgs([]string{"compile", "--manifest-dir", dir, "--metric", "does_not_exist"})
	root.SetOut(discardWriter{})
	root.SetErr(discardWriter{})

	err := root.Execute()
	require.Error(t, err)
}

// discardWriter implements io.Writer, discarding everything written -
// used to keep cobra's own usage/error printing out of test output.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
