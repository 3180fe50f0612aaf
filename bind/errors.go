// FILE: lixenwraith/propbind/bind/errors.go
package bind

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/lixenwraith/propbind/name"
	"github.com/lixenwraith/propbind/source"
)

// BindError wraps a failure with the name and target being bound.
type BindError struct {
	Name     name.Name
	Target   Type
	Property *source.Property // Last matched property, if any
	Err      error
}

func (e *BindError) Error() string {
	msg := fmt.Sprintf("failed to bind properties under '%s' to %s", e.Name, e.Target)
	if e.Property != nil {
		msg += fmt.Sprintf(" (property '%s' from %s)", e.Property.Name, e.Property.Origin)
	}
	return msg + ": " + e.Err.Error()
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// BindingMissingError is returned by BindRequired when nothing was bound.
type BindingMissingError struct {
	Name   name.Name
	Target Type
}

func (e *BindingMissingError) Error() string {
	return fmt.Sprintf("no properties bound under '%s' for required %s", e.Name, e.Target)
}

// UnboundElementsError reports indexed properties that were not consumed,
// such as gaps in an index sequence or indices past an array's length.
type UnboundElementsError struct {
	Name    name.Name
	Unbound []name.Name
}

func (e *UnboundElementsError) Error() string {
	parts := make([]string, len(e.Unbound))
	for i, n := range e.Unbound {
		parts[i] = n.String()
	}
	return fmt.Sprintf("elements under '%s' were left unbound: %s", e.Name, strings.Join(parts, ", "))
}

// ConstructorConflictError reports contradictory constructor markers on a type.
type ConstructorConflictError struct {
	Type   reflect.Type
	Reason string
}

func (e *ConstructorConflictError) Error() string {
	return fmt.Sprintf("%s %s", e.Type, e.Reason)
}
