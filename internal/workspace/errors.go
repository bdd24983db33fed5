package workspace

import (
	"errors"
	"fmt"
)

// ErrUnknownPath is matched by every *UnknownPathError.
var ErrUnknownPath = errors.New("path is not open")

// ErrNoActiveDocument is returned by cursor operations when no document is open.
var ErrNoActiveDocument = errors.New("no active document")

// UnknownPathError reports an operation against a path that is not open.
// The session is left unchanged.
type UnknownPathError struct {
	Op   string
	Path string
}

func (e *UnknownPathError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, ErrUnknownPath)
}

// Is reports whether target is ErrUnknownPath.
func (e *UnknownPathError) Is(target error) bool {
	return target == ErrUnknownPath
}

func unknownPath(op, path string) error {
	return &UnknownPathError{Op: op, Path: path}
}
