package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned (wrapped) when an ID is not registered.
	ErrNotFound = errors.New("not found")

	// ErrIncompleteElement signals that an element refers to something that
	// has not been registered yet and should be retried later.
	ErrIncompleteElement = errors.New("incomplete element")
)

// IncompleteElementError describes a missing forward reference.
type IncompleteElementError struct {
	// Element is what could not be built, e.g. "result map users.adminMap".
	Element string
	// Reference is the missing ID it points at.
	Reference string
	Cause     error
}

func (e *IncompleteElementError) Error() string {
	msg := fmt.Sprintf("%s refers to '%s' which is not available yet", e.Element, e.Reference)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is reports whether target is ErrIncompleteElement.
func (e *IncompleteElementError) Is(target error) bool {
	return target == ErrIncompleteElement
}

// Unwrap returns the underlying cause error.
func (e *IncompleteElementError) Unwrap() error {
	return e.Cause
}

// UnresolvedError lists the pending elements left after the final pass.
type UnresolvedError struct {
	Errors []error
}

func (e *UnresolvedError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("configuration has unresolved elements:\n- %s", strings.Join(parts, "\n- "))
}

func (e *UnresolvedError) Unwrap() []error {
	return e.Errors
}
