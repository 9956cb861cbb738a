package analysis

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindEmptyInput        Kind = "empty_input"
	KindExtractionFailure Kind = "extraction_parse_failure"
	KindProviderFailure   Kind = "provider_transport_failure"
)

var ErrEmptyInput = errors.New("no content provided")

// Error is the terminal failure of an analysis run.
type Error struct {
	Kind     Kind
	Chunk    int // zero-based chunk index, -1 when no chunk was involved
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	if e.Chunk < 0 {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: chunk %d after %d attempts: %v", e.Kind, e.Chunk+1, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ProviderError marks a failed completion call.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return "completion failed: " + e.Err.Error() }

func (e *ProviderError) Unwrap() error { return e.Err }

// ParseError marks a reply no JSON object could be recovered from.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string { return "unparseable reply: " + e.Reason }
