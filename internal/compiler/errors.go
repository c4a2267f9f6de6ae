// Package compiler wires the SMQ parser, composer pipeline, join
// planner, SQL writer, and metadata collector into the two public
// entry points spec.md §6 names: Compile and CompileBatch.
package compiler

import "fmt"

// InputValidationError is a malformed SMQ: empty metrics, more than one
// join clause, an unparsable reference, or an unknown model/metric
// name.
type InputValidationError struct {
	Message string
}

func (e *InputValidationError) Error() string { return e.Message }

// ManifestViolationError is an unresolved reference, a missing required
// field, an out-of-range enum value, or an unknown source/table,
// surfaced during manifest assembly or lookup.
type ManifestViolationError struct {
	Message string
}

func (e *ManifestViolationError) Error() string { return e.Message }

// ExpansionLimitError is a metric expansion that exceeded the maximum
// nesting depth or revisited a metric already on its own path. Path is
// the full chain of metric names that led to the failure.
type ExpansionLimitError struct {
	Path []string
}

func (e *ExpansionLimitError) Error() string {
	return fmt.Sprintf("metric expansion failed: %s", pathString(e.Path))
}

func pathString(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += " -> "
		}
		out += p
	}
	return out
}

// JoinError is a query whose projection layers do not form a single
// connected component in the entity graph. ModelSets lists each
// disconnected group; per spec.md §7 this is not fatal at the service
// layer - the caller is expected to split the SMQ across ModelSets and
// compile each partition separately.
type JoinError struct {
	ModelSets [][]string
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("models do not form a single connected join graph: %v", e.ModelSets)
}

// DialectError is a requested or DDL-declared dialect the compiler does
// not recognize.
type DialectError struct {
	Message string
}

func (e *DialectError) Error() string { return e.Message }

func errInput(format string, args ...any) *InputValidationError {
	return &InputValidationError{Message: fmt.Sprintf(format, args...)}
}

func errManifest(format string, args ...any) *ManifestViolationError {
	return &ManifestViolationError{Message: fmt.Sprintf(format, args...)}
}

func errDialect(format string, args ...any) *DialectError {
	return &DialectError{Message: fmt.Sprintf(format, args...)}
}
