package device

import (
	"errors"
	"fmt"
)

// Sentinel errors for the attribute-resolution taxonomy. Wrap-aware
// callers match them with errors.Is.
var (
	// ErrUnknownAttribute means the symbolic name is not in the resolved
	// registry for this device's class. Local, never retried.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrNotPresent is the protocol "object/instance not present"
	// condition. Recoverable: table walks skip the row, scalar reads
	// yield an absent value.
	ErrNotPresent = errors.New("object not present")

	// ErrTransport is a session-reported failure unrelated to sentinel
	// absence. The engine does not retry; retry policy belongs to the
	// session.
	ErrTransport = errors.New("transport error")

	// ErrSetFailed means the agent rejected a write. No partial-write
	// recovery is attempted.
	ErrSetFailed = errors.New("set failed")
)

// OpError carries the operation and attribute context of a failed call.
type OpError struct {
	// Op is the operation that failed: "get", "reload", "set" or "walk".
	Op string

	// Attr is the symbolic attribute name.
	Attr string

	// Err is the underlying condition, one of the sentinel errors or a
	// wrapped session error.
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("device: %s %s: %v", e.Op, e.Attr, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op, attr string, err error) *OpError {
	return &OpError{Op: op, Attr: attr, Err: err}
}
