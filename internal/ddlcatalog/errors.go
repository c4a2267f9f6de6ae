package ddlcatalog

import "fmt"

// Error is a malformed ddl.sql document.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func errDialect(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
