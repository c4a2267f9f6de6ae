// Package sqlcfg carries the compiler's tunables as one explicit
// struct, passed by the caller into compiler.Compile and
// compiler.CompileBatch - never read from a package-level global or an
// environment variable. manifest.Assemble and lint.Lint take no Config.
package sqlcfg

import (
	"log/slog"

	"github.com/rkddus222/smqc/internal/sqlast"
)

// Config is the compiler's full set of tunables.
type Config struct {
	// DefaultDialect is used when a caller does not supply one
	// explicitly to Compile.
	DefaultDialect sqlast.Dialect

	// ExpansionDepthLimit is a nested-metric expansion depth; 0 resolves
	// to 10. smqparse does not read it: its expansion limit is the fixed
	// constant 10.
	ExpansionDepthLimit int

	// SimilarityThreshold is a did-you-mean similarity threshold; 0
	// resolves to 0.85. The linter does not read it: lint.Lint uses 0.6
	// and lint.LintWithThreshold takes the threshold as an argument.
	SimilarityThreshold float64

	// QualifyWhenMultiModel is carried on the struct but read by no
	// package: the writer routes each filter to WHERE or QUALIFY by what
	// it references, whatever the model count.
	QualifyWhenMultiModel bool

	// Logger receives one structured line per Compile call. Defaults to
	// slog.Default() when nil.
	Logger *slog.Logger
}

const (
	defaultExpansionDepthLimit = 10
	defaultSimilarityThreshold = 0.85
)

// Default returns the zero-config baseline: DuckDB dialect, depth limit
// 10, similarity threshold 0.85, QUALIFY routing unconditional, and
// slog.Default() logging.
func Default() Config {
	return Config{
		DefaultDialect:      sqlast.DialectDuckDB,
		ExpansionDepthLimit: defaultExpansionDepthLimit,
		SimilarityThreshold: defaultSimilarityThreshold,
		Logger:              slog.Default(),
	}
}

// ResolvedLogger returns c.Logger, falling back to slog.Default() when
// unset, so callers never need to duplicate the nil check.
func (c Config) ResolvedLogger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// ResolvedExpansionDepthLimit returns ExpansionDepthLimit, falling back
// to 10 when unset.
func (c Config) ResolvedExpansionDepthLimit() int {
	if c.ExpansionDepthLimit > 0 {
		return c.ExpansionDepthLimit
	}
	return defaultExpansionDepthLimit
}

// ResolvedSimilarityThreshold returns SimilarityThreshold, falling back
// to 0.85 when unset.
func (c Config) ResolvedSimilarityThreshold() float64 {
	if c.SimilarityThreshold > 0 {
		return c.SimilarityThreshold
	}
	return defaultSimilarityThreshold
}
