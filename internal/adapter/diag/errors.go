package diag

import (
	"errors"
	"fmt"
	"go/token"
)

// ErrInvalidSource is returned when one or more .fng files failed to expand
// and the configured ErrorReporter swallowed the individual errors.
var ErrInvalidSource = errors.New("expansion failed: invalid function group source")

// ErrorWithPos is an error about a .fng source file that includes the
// location that caused it.
//
// Error() contains both the position and the underlying error; Unwrap()
// returns only the underlying error.
type ErrorWithPos interface {
	error
	GetPosition() token.Position
	Unwrap() error
}

func Error(pos token.Position, err error) ErrorWithPos {
	return errorWithPos{pos: pos, underlying: err}
}

func Errorf(pos token.Position, format string, args ...any) ErrorWithPos {
	return errorWithPos{pos: pos, underlying: fmt.Errorf(format, args...)}
}

type errorWithPos struct {
	underlying error
	pos        token.Position
}

func (e errorWithPos) Error() string {
	return fmt.Sprintf("%s: %v", e.pos, e.underlying)
}

func (e errorWithPos) GetPosition() token.Position {
	return e.pos
}

func (e errorWithPos) Unwrap() error {
	return e.underlying
}

var _ ErrorWithPos = errorWithPos{}
