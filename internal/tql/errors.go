package tql

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax wraps every parse failure.
	ErrSyntax = errors.New("tql syntax error")

	// ErrMalformedQuery wraps every MalformedQueryError.
	ErrMalformedQuery = errors.New("malformed query")
)

// MalformedQueryError reports a node that cannot be evaluated: an
// uninitialized node, or an expression list node with no children.
type MalformedQueryError struct {
	Path   string // "$" for the root, "$[1][0]" for nested nodes
	Reason string
}

func (e *MalformedQueryError) Error() string {
	return fmt.Sprintf("malformed query at %s: %s", e.Path, e.Reason)
}

func (e *MalformedQueryError) Unwrap() error {
	return ErrMalformedQuery
}
