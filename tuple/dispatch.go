package tuple

import "fmt"

// DispatchError is the panic value of a method group called with a tuple
// shape that none of its variants declares.
type DispatchError struct {
	Group string
	Shape string
}

// NewDispatchError describes a failed dispatch of args to group.
func NewDispatchError(group string, args any) *DispatchError {
	shape := "<nil>"
	if args != nil {
		shape = fmt.Sprintf("%T", args)
	}
	return &DispatchError{Group: group, Shape: shape}
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("fngroup: %s has no variant for %s", e.Group, e.Shape)
}
