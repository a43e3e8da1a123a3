package reconcile

import (
	"errors"
	"fmt"
)

// Op identifies the runtime operation a RuntimeError came from.
type Op string

const (
	OpList    Op = "list"
	OpInspect Op = "inspect"
	OpCreate  Op = "create"
	OpStart   Op = "start"
	OpStop    Op = "stop"
	OpRemove  Op = "remove"
)

// RuntimeError carries structured context for a failed runtime call.
// Replica is empty for operations that do not target one container.
type RuntimeError struct {
	Op      Op
	Replica string
	Err     error
}

func (e *RuntimeError) Error() string {
	if e.Replica == "" {
		return fmt.Sprintf("runtime %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("runtime %s %q: %v", e.Op, e.Replica, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

func opError(op Op, replica string, err error) error {
	if err == nil {
		return nil
	}
	return &RuntimeError{Op: op, Replica: replica, Err: err}
}

// IsOp reports whether err wraps a RuntimeError for the given operation.
func IsOp(err error, op Op) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Op == op
}
