package compiler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rkddus222/smqc/internal/compose"
	"github.com/rkddus222/smqc/internal/joinplan"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/metacollect"
	"github.com/rkddus222/smqc/internal/smqparse"
	"github.com/rkddus222/smqc/internal/sqlast"
	"github.com/rkddus222/smqc/internal/sqlcfg"
	"github.com/rkddus222/smqc/internal/sqlwrite"
)

// Result is one successful compile: the rendered SQL text and the
// resolved output column metadata, in final SELECT-list order.
type Result struct {
	SQL     string
	Columns []metacollect.Column
	TraceID string
}

// Compile lowers smq against m into SQL: parse -> compose -> write ->
// collect metadata. dialect selects both the composer's quoting rules
// and the writer's identifier quoting; inlineCTEs replaces the WITH
// clause with nested subqueries, each aliased with its CTE's name, via
// internal/sqlwrite.Inline when the caller's target engine handles inline subqueries better
// than CTEs (DuckDB does not need this; some warehouses do).
//
// Every error Compile returns, other than ctx's own error when ctx is
// already done, is one of this package's typed kinds
// (InputValidationError, ManifestViolationError, ExpansionLimitError,
// JoinError, DialectError), translated from whichever stage raised it
// so a caller can switch on error kind without knowing the internal
// pipeline shape.
func Compile(ctx context.Context, smq smqparse.SMQ, m *manifest.Manifest, dialect sqlast.Dialect, inlineCTEs bool, cfg sqlcfg.Config) (*Result, error) {
	traceID := uuid.NewString()
	logger := cfg.ResolvedLogger().With("trace_id", traceID)
	start := time.Now()

	if dialect == "" {
		dialect = cfg.DefaultDialect
	}
	if !dialect.Valid() {
		err := errDialect("unsupported dialect %q", dialect)
		logger.Error("compile failed", "stage", "dialect", "error", err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := smqparse.Parse(m, smq)
	if err != nil {
		wrapped := wrapParseError(err)
		logger.Error("compile failed", "stage", "parse", "error", wrapped)
		return nil, wrapped
	}

	doc, err = compose.Run(doc, compose.Input{
		Manifest:       m,
		Dialect:        dialect,
		OriginalMetric: smq.Metrics,
	})
	if err != nil {
		wrapped := wrapComposeError(err)
		logger.Error("compile failed", "stage", "compose", "error", wrapped)
		return nil, wrapped
	}

	with, err := sqlwrite.Write(doc, m, dialect)
	if err != nil {
		wrapped := wrapWriteError(err)
		logger.Error("compile failed", "stage", "write", "error", wrapped)
		return nil, wrapped
	}

	final := with.Query
	columns, err := metacollect.Collect(final, m)
	if err != nil {
		logger.Error("compile failed", "stage", "metacollect", "error", err)
		return nil, errInput("%v", err)
	}

	var sql string
	if inlineCTEs {
		sql = sqlast.Format(dialect, sqlwrite.Inline(with))
	} else {
		sql = sqlast.Format(dialect, with)
	}

	logger.Info("compile succeeded", "elapsed", time.Since(start), "layers", len(doc.ProjectionLayers()))
	return &Result{SQL: sql, Columns: columns, TraceID: traceID}, nil
}

// wrapParseError classifies an smqparse failure: a metric-expansion
// cycle or depth overrun becomes ExpansionLimitError; every other
// malformed-SMQ failure becomes InputValidationError.
func wrapParseError(err error) error {
	var expErr *smqparse.ExpansionLimitError
	if errors.As(err, &expErr) {
		return &ExpansionLimitError{Path: expErr.Path}
	}
	var parseErr *smqparse.Error
	if errors.As(err, &parseErr) {
		return errInput("%s", parseErr.Message)
	}
	return errInput("%v", err)
}

// wrapComposeError classifies a composer-pipeline failure: an
// unresolved reference during prerequisite completion is a manifest
// violation; a disconnected join graph is this package's JoinError.
func wrapComposeError(err error) error {
	var joinErr *joinplan.JoinError
	if errors.As(err, &joinErr) {
		return &JoinError{ModelSets: joinErr.ModelSets}
	}
	var composeErr *compose.Error
	if errors.As(err, &composeErr) {
		return errManifest("%s", composeErr.Message)
	}
	return errManifest("%v", err)
}

// wrapWriteError classifies an internal/sqlwrite failure: every one of
// its errors today stems from a layer referencing an unknown model or
// finding no join plan when the composer should have already
// synthesized one - both manifest-shaped problems from the writer's
// perspective.
func wrapWriteError(err error) error {
	return errManifest("%v", err)
}
