package bell

import "fmt"

// InvariantError describes a state the simulation must never reach.
// It is raised with panic, not returned.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("bell: invariant violated in %s: %s", e.Op, e.Detail)
}

func invariant(op, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
