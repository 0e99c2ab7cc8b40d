package typealias

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrTypeNotFound is returned (wrapped) when neither an alias nor the
	// Loader knows a type name.
	ErrTypeNotFound = errors.New("type not found")

	// ErrAliasConflict matches any *AliasConflictError.
	ErrAliasConflict = errors.New("alias conflict")
)

// TypeError reports an invalid alias registration or a failed resolution.
type TypeError struct {
	Message string
	Cause   error
}

func (e *TypeError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s. Cause: %v", e.Message, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *TypeError) Unwrap() error {
	return e.Cause
}

// AliasConflictError is returned when an alias is re-registered with a type
// different from the one it already maps to.
type AliasConflictError struct {
	Alias     string
	Existing  reflect.Type
	Requested reflect.Type
}

func (e *AliasConflictError) Error() string {
	return fmt.Sprintf("the alias '%s' is already mapped to the value '%s'", e.Alias, QualifiedName(e.Existing))
}

// Is reports whether target is ErrAliasConflict.
func (e *AliasConflictError) Is(target error) bool {
	return target == ErrAliasConflict
}
