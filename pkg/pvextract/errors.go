package pvextract

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file cannot be read as a report document.
var ErrInvalidFormat = errors.New("invalid document format")

// PageError represents a failure confined to one page. The page contributes
// no records and the run goes on.
type PageError struct {
	Page      int    // 1-based page number
	Component string // "open", "detect", "parse", "timeout"
	Err       error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d (%s): %v", e.Page, e.Component, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// NewPageError creates a new PageError.
func NewPageError(page int, component string, err error) *PageError {
	return &PageError{
		Page:      page,
		Component: component,
		Err:       err,
	}
}
