package toon

import "fmt"

// Error is the error type returned by Encode and Decode. Decode errors carry
// the 1-based line number of the offending input line when it is determinable;
// encode errors and document-level decode errors have Line == 0.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("toon: line %d: %s", e.Line, e.Message)
	}
	return "toon: " + e.Message
}

func errorf(format string, args ...interface{}) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func lineErrorf(line int, format string, args ...interface{}) error {
	return &Error{Line: line, Message: fmt.Sprintf(format, args...)}
}
