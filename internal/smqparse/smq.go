// Package smqparse lowers a semantic-model query (SMQ) into the
// per-layer intermediate representation the composer pipeline rewrites.
package smqparse

// SMQ is the structured query intent a caller submits for compilation:
// metrics to project, optional grouping/filtering/ordering/limiting,
// and at most one explicit join clause.
type SMQ struct {
	Metrics []string
	GroupBy []string
	Filters []string
	OrderBy []string
	Limit   *int
	Joins   []string
}

// Validate enforces the SMQ-level structural constraints: metrics must
// be present, and at most one join clause may be supplied (additional
// joins, when needed, are synthesized by the join planner).
func (s SMQ) Validate() error {
	if len(s.Metrics) == 0 {
		return errInput("smq.metrics must be non-empty")
	}
	if len(s.Joins) > 1 {
		return errInput("smq.joins accepts at most one element, got %d", len(s.Joins))
	}
	return nil
}
