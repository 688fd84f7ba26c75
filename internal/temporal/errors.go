package temporal

import (
	"errors"
	"fmt"
)

// Kind classifies why a request could not be satisfied.
type Kind int

const (
	// ParseFailure means date/time text matched none of the accepted formats.
	ParseFailure Kind = iota + 1
	// ResolutionFailure means a timezone name is not known.
	ResolutionFailure
	// RangeFailure means a numeric argument is out of its valid range.
	RangeFailure
)

func (k Kind) String() string {
	switch k {
	case ParseFailure:
		return "parse"
	case ResolutionFailure:
		return "resolution"
	case RangeFailure:
		return "range"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ToolError is the only error type returned by Engine operations. Message is
// meant for the end user and is passed through verbatim.
type ToolError struct {
	Kind    Kind
	Message string
	// Input is the offending argument (text, zone name or number).
	Input string
}

func (e *ToolError) Error() string {
	return e.Message
}

func newToolError(kind Kind, input, format string, args ...any) *ToolError {
	return &ToolError{Kind: kind, Input: input, Message: fmt.Sprintf(format, args...)}
}

// AsToolError reports whether err is (or wraps) a *ToolError.
func AsToolError(err error) (*ToolError, bool) {
	var te *ToolError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
