package engine

import (
	"errors"
	"fmt"
)

var (
	ErrCountryNotFound = errors.New("country not found")
	ErrEmptySeries     = errors.New("empty population or species series")
	ErrSeriesMismatch  = errors.New("series length differs from the rest of the dataset")
	ErrNonPositiveArea = errors.New("area must be positive")
	ErrMissingColumn   = errors.New("missing column")
)

// ParseError reports a field that could not be converted.
type ParseError struct {
	File   string
	Line   int
	Column int
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: column %d: %q: %v", e.File, e.Line, e.Column+1, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
