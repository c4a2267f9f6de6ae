package compiler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/smqparse"
	"github.com/rkddus222/smqc/internal/sqlast"
	"github.com/rkddus222/smqc/internal/sqlcfg"
)

// maxBatchConcurrency bounds how many compiles run at once, matching
// the registration service's bounded fan-out.
const maxBatchConcurrency = 8

// BatchResult pairs one CompileBatch input with its outcome: Err is nil
// and Result populated on success, or Err set and Result nil on
// failure. Every input produces exactly one BatchResult, in input
// order, regardless of which individual compiles failed.
type BatchResult struct {
	Result *Result
	Err    error
}

// CompileBatch compiles every smq in smqs against the same, read-only
// manifest in parallel, one goroutine per query bounded to
// maxBatchConcurrency at a time. Manifest is never mutated after
// assembly and each compile allocates its own IR, so no synchronization
// beyond errgroup's is needed. A single query's failure never aborts
// the batch - it is captured in that query's BatchResult.Err while the
// rest keep running.
func CompileBatch(ctx context.Context, smqs []smqparse.SMQ, m *manifest.Manifest, dialect sqlast.Dialect, inlineCTEs bool, cfg sqlcfg.Config) ([]BatchResult, error) {
	results := make([]BatchResult, len(smqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchConcurrency)

	for i := range smqs {
		i := i
		g.Go(func() error {
			res, err := Compile(gctx, smqs[i], m, dialect, inlineCTEs, cfg)
			results[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
