package smqparse

import (
	"fmt"
	"strings"
)

// Error is a malformed SMQ: an invalid textual reference, an unknown
// model/metric/dimension/measure name, or a structural violation like
// multiple join clauses.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func errInput(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// ExpansionLimitError is a metric expansion that exceeded the maximum
// nesting depth or revisited a metric already on the path (a cycle).
// Path is the full chain of metric names that led to the failure.
type ExpansionLimitError struct {
	Path  []string
	Cycle bool
}

func (e *ExpansionLimitError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("cyclic metric expansion: %s", strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("metric expansion exceeded depth %d: %s", maxExpansionDepth, strings.Join(e.Path, " -> "))
}
