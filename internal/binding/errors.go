package binding

import (
	"errors"
	"fmt"
)

// ErrBinding matches every *BindingError.
var ErrBinding = errors.New("binding error")

// BindingError reports a mapper that cannot be bound or a method that cannot
// be routed to a statement.
type BindingError struct {
	Mapper  string
	Method  string
	Message string
}

func (e *BindingError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("mapper %s: %s", e.Mapper, e.Message)
	}
	return fmt.Sprintf("mapper %s, method %s: %s", e.Mapper, e.Method, e.Message)
}

func (e *BindingError) Is(target error) bool {
	return target == ErrBinding
}
