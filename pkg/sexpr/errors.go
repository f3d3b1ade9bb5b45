package sexpr

import (
	"errors"
	"fmt"
)

// ErrParse matches every *ParseError with errors.Is.
var ErrParse = errors.New("parse error")

// ParseError reports malformed expression input.
type ParseError struct {
	Offset int    // byte offset into the line
	Reason string // human-readable cause
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Reason)
}

// Is makes errors.Is(err, ErrParse) hold for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
