package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rkddus222/smqc/internal/smqparse"
	"github.com/rkddus222/smqc/internal/sqlast"
	"github.com/rkddus222/smqc/internal/sqlcfg"
)

func TestCompileBatch_RunsAllInInputOrderAndCapturesPerItemErrors(t *testing.T) {
	m := testManifest()
	smqs := []smqparse.SMQ{
		{Metrics: []string{"total_revenue"}},
		{Metrics: []string{"nonexistent_metric"}},
		{Metrics: []string{"avg_order_value"}},
	}

	results, err := CompileBatch(context.Background(), smqs, m, sqlast.DialectDuckDB, false, sqlcfg.Default())
	require.NoError(t, err, "a single query's failure must not abort the batch")
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Result)

	require.Error(t, results[1].Err)
	var target *InputValidationError
	require.ErrorAs(t, results[1].Err, &target)
	require.Nil(t, results[1].Result)

	require.NoError(t, results[2].Err)
	require.NotNil(t, results[2].Result)
}

func TestCompileBatch_EmptyInputReturnsEmptySlice(t *testing.T) {
	m := testManifest()
	results, err := CompileBatch(context.Background(), nil, m, sqlast.DialectDuckDB, false, sqlcfg.Default())
	require.NoError(t, err)
	require.Empty(t, results)
}
