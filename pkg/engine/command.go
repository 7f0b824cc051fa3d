package engine

import "fmt"

// CommandError reports why a player command was rejected. Rejected
// commands leave the game state unchanged; callers branch on the error
// instead of diffing state.
type CommandError struct {
	Reason string
}

func (e *CommandError) Error() string {
	return "command rejected: " + e.Reason
}

// rejected builds a CommandError.
func rejected(format string, args ...any) error {
	return &CommandError{Reason: fmt.Sprintf(format, args...)}
}

// IsRejected reports whether err is a command rejection rather than a
// programming error.
func IsRejected(err error) bool {
	_, ok := err.(*CommandError)
	return ok
}
