package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNoMovesToUndo = errors.New("no moves to undo")
	ErrGameOver      = errors.New("game is over, start a new game")
)

// ErrorKind classifies why a move was rejected.
type ErrorKind string

const (
	KindStructural    ErrorKind = "structural"
	KindOrdering      ErrorKind = "ordering"
	KindCapacity      ErrorKind = "capacity"
	KindOccupancy     ErrorKind = "occupancy"
	KindFoundationSeq ErrorKind = "foundation"
	KindMalformed     ErrorKind = "malformed"
)

// MoveError is a recoverable rule rejection. The state is left untouched.
type MoveError struct {
	Kind   ErrorKind
	Reason string
}

func (e *MoveError) Error() string {
	return e.Reason
}

func reject(kind ErrorKind, format string, args ...any) *MoveError {
	return &MoveError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// AsMoveError unwraps err into a *MoveError if it is one.
func AsMoveError(err error) (*MoveError, bool) {
	var me *MoveError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// IsKind reports whether err is a MoveError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	me, ok := AsMoveError(err)
	return ok && me.Kind == kind
}
