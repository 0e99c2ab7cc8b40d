package settings

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/specialistvlad/gobatis/internal/ctxlog"
	"github.com/specialistvlad/gobatis/internal/typealias"
)

// UnknownColumnBehavior selects what happens when auto-mapping meets a column
// it cannot place, or a property whose type it cannot assign.
type UnknownColumnBehavior int

const (
	// UnknownColumnNone does nothing.
	UnknownColumnNone UnknownColumnBehavior = iota
	// UnknownColumnWarning logs a warning.
	UnknownColumnWarning
	// UnknownColumnFailing fails the mapping.
	UnknownColumnFailing
)

var unknownColumnNames = enumNames[UnknownColumnBehavior]{
	kind:  "unknown column behavior",
	names: []string{"NONE", "WARNING", "FAILING"},
}

func (b UnknownColumnBehavior) String() string { return unknownColumnNames.name(b) }

// ParseUnknownColumnBehavior parses NONE, WARNING or FAILING.
func ParseUnknownColumnBehavior(s string) (UnknownColumnBehavior, error) {
	return unknownColumnNames.parse(s)
}

// UnknownColumn describes the column auto-mapping could not handle.
// PropertyType is set only when the property exists but its type cannot be
// assigned from a column value.
type UnknownColumn struct {
	StatementID  string
	Column       string
	Property     string
	PropertyType reflect.Type
}

func (u UnknownColumn) message() string {
	propertyType := "nil"
	if u.PropertyType != nil {
		propertyType = typealias.QualifiedName(u.PropertyType)
	}
	return fmt.Sprintf("Unknown column is detected on '%s' auto-mapping. Mapping parameters are [columnName=%s,propertyName=%s,propertyType=%s]",
		u.StatementID, u.Column, u.Property, propertyType)
}

// ErrUnknownColumn matches every *UnknownColumnError.
var ErrUnknownColumn = errors.New("unknown column")

// UnknownColumnError is returned by the FAILING behavior.
type UnknownColumnError struct {
	UnknownColumn
}

func (e *UnknownColumnError) Error() string {
	return e.message()
}

// Is reports whether target is ErrUnknownColumn.
func (e *UnknownColumnError) Is(target error) bool {
	return target == ErrUnknownColumn
}

type unknownColumnAction func(ctx context.Context, col UnknownColumn) error

// unknownColumnActions binds each behavior to its action.
var unknownColumnActions = map[UnknownColumnBehavior]unknownColumnAction{
	UnknownColumnNone: func(context.Context, UnknownColumn) error {
		return nil
	},
	UnknownColumnWarning: func(ctx context.Context, col UnknownColumn) error {
		ctxlog.FromContext(ctx).Warn(col.message(),
			"statement", col.StatementID, "column", col.Column, "property", col.Property)
		return nil
	},
	UnknownColumnFailing: func(_ context.Context, col UnknownColumn) error {
		return &UnknownColumnError{UnknownColumn: col}
	},
}

// DoAction performs the behavior's action for an unknown column of the
// statement's auto-mapping target.
func (b UnknownColumnBehavior) DoAction(ctx context.Context, statementID, column, property string, propertyType reflect.Type) error {
	action, ok := unknownColumnActions[b]
	if !ok {
		return fmt.Errorf("no action bound to %s", b)
	}
	return action(ctx, UnknownColumn{
		StatementID:  statementID,
		Column:       column,
		Property:     property,
		PropertyType: propertyType,
	})
}
