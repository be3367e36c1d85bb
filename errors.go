package superpipe

import (
	"errors"

	perrors "github.com/deepnoodle-ai/superpipe/errors"
	"github.com/deepnoodle-ai/superpipe/parser"
)

// ReentryError is returned when rewritten source cannot be parsed again.
// Positions in Err refer to Output. Rewrite keeps line numbers, so the line
// usually points at the same place in the original source as well.
type ReentryError struct {
	Filename string
	Output   string
	Err      error
}

// Error implements the error interface.
func (e *ReentryError) Error() string {
	return "re-entry failed: " + e.Err.Error()
}

// Unwrap returns the parse error.
func (e *ReentryError) Unwrap() error {
	return e.Err
}

// ToFormatted converts the error to a FormattedError for display.
func (e *ReentryError) ToFormatted() *perrors.FormattedError {
	fe := &perrors.FormattedError{
		Message:  e.Err.Error(),
		Filename: e.Filename,
	}
	var perr parser.ParserError
	if errors.As(e.Err, &perr) {
		fe = perr.ToFormatted()
	}
	fe.Code = perrors.E3001
	fe.Kind = "re-entry error"
	fe.Note = "the rewritten source failed to parse; positions refer to the rewritten source"
	return fe
}
