package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rkddus222/smqc/internal/compiler"
)

func TestClassifyErrorKind_MatchesEachTypedCompilerError(t *testing.T) {
	require.Equal(t, "input_validation", classifyErrorKind(&compiler.InputValidationError{Message: "x"}))
	require.Equal(t, "manifest_violation", classifyErrorKind(&compiler.ManifestViolationError{Message: "x"}))
	require.Equal(t, "expansion_limit", classifyErrorKind(&compiler.ExpansionLimitError{Path: []string{"a", "b"}}))
	require.Equal(t, "join_error", classifyErrorKind(&compiler.JoinError{ModelSets: [][]string{{"a"}, {"b"}}}))
	require.Equal(t, "dialect_error", classifyErrorKind(&compiler.DialectError{Message: "x"}))
}

func TestVersionCmd_TextOutput_PrintsVersion(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"version"})

	restore := captureStdout(t)
	require.NoError(t, root.Execute())
	out := restore()

	require.Contains(t, out, "smqc version")
}

func TestRootCmd_RejectsUnsupportedOutputFormat(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"version", "--output", "xml"})
	root.SetOut(discardWriter{})
	root.SetErr(discardWriter{})

	err := root.Execute()
	require.Error(t, err)
}
