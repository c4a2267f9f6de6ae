// Package compose runs the fixed, ordered sequence of AST rewrites that
// turn the SMQ parser's per-layer IR into one ready for the SQL writer:
// pushing aggregates down from deriv, synthesizing default joins,
// completing missing projections, and applying dialect-specific
// quoting. Every pass is idempotent; running the pipeline twice over
// its own output is a no-op.
package compose

import (
	"github.com/rkddus222/smqc/internal/ir"
	"github.com/rkddus222/smqc/internal/manifest"
	"github.com/rkddus222/smqc/internal/sqlast"
)

// Input carries the original SMQ alongside the manifest and dialect so
// passes that need to refer back to what the user literally asked for
// (pass 4) have it without re-deriving it from the IR.
type Input struct {
	Manifest       *manifest.Manifest
	Dialect        sqlast.Dialect
	OriginalMetric []string // SMQ.Metrics, in user order
}

// Run executes all twelve passes in their contractual order, mutating
// doc in place and returning it for chaining.
func Run(doc *ir.Document, in Input) (*ir.Document, error) {
	moveDimensionExprToDeriv(doc)
	if err := pushDownAggFromDeriv(doc, in.Manifest); err != nil {
		return nil, err
	}
	moveGroupsToMetrics(doc)
	includeOriginalMetrics(doc, in.OriginalMetric)
	replaceAnonymousFuncs(doc)
	replaceSubqueryFroms(doc, in.Manifest)
	if err := completeDerivPrerequisites(doc, in.Manifest); err != nil {
		return nil, err
	}
	checkGroupSelectParity(doc)
	if err := completeAggPrerequisites(doc, in.Manifest); err != nil {
		return nil, err
	}
	if err := synthesizeDefaultJoin(doc, in.Manifest); err != nil {
		return nil, err
	}
	aliasUnaliasedUppermostExprs(doc, in.Dialect)
	applyDialectQuoting(doc, in.Dialect)
	return doc, nil
}
