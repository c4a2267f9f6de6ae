package manifest

import "fmt"

// Error is a manifest assembly/validation failure: a malformed directory,
// an unparsable YAML file, or a violated manifest invariant (duplicate
// names, unknown references, invalid enum values).
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// ErrManifest builds a manifest Error from a format string, matching the
// domain package's one-constructor-per-kind convention.
func ErrManifest(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
