package metadata

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every LookupError.
var ErrNotFound = errors.New("not found")

// Lookup kinds.
const (
	KindMapping   = "mapping"
	KindRule      = "rule"
	KindProcessor = "processor"
)

// LookupError reports a configuration id that is not registered.
type LookupError struct {
	Kind string
	ID   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) true for lookup errors.
func (e *LookupError) Is(target error) bool {
	return target == ErrNotFound
}

// Processor operations reported by InvocationError.
const (
	OpRead  = "read"
	OpWrite = "write"
)

// InvocationError wraps a failure raised by a processor.
type InvocationError struct {
	ProcessorID string
	Op          string
	Err         error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("processor %q %s failed: %v", e.ProcessorID, e.Op, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
