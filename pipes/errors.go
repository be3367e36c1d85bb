package pipes

import (
	"errors"
	"fmt"

	perrors "github.com/deepnoodle-ai/superpipe/errors"
	"github.com/deepnoodle-ai/superpipe/internal/token"
)

// ErrUnsupportedTarget is wrapped by every ActivationError.
var ErrUnsupportedTarget = errors.New("unsupported activation target")

// ActivationError reports a use of the activating decorator that cannot be
// honored, such as a decorator that would receive an already wrapped
// callable instead of a definition.
type ActivationError struct {
	Code       perrors.ErrorCode
	Message    string
	Hint       string
	Start      token.Position
	End        token.Position
	SourceLine string
}

// Error implements the error interface.
func (e *ActivationError) Error() string {
	msg := "activation error: " + e.Message
	if e.Start.File != "" {
		msg = fmt.Sprintf("%s (%s:%d:%d)", msg, e.Start.File,
			e.Start.LineNumber(), e.Start.ColumnNumber())
	}
	return msg
}

// Unwrap returns ErrUnsupportedTarget.
func (e *ActivationError) Unwrap() error {
	return ErrUnsupportedTarget
}

// ToFormatted converts the error to a FormattedError for display.
func (e *ActivationError) ToFormatted() *perrors.FormattedError {
	fe := &perrors.FormattedError{
		Code:     e.Code,
		Kind:     "activation error",
		Message:  e.Message,
		Filename: e.Start.File,
		Line:     e.Start.LineNumber(),
		Column:   e.Start.ColumnNumber(),
		Hint:     e.Hint,
	}
	if e.End.Line == e.Start.Line && e.End.Column > e.Start.Column {
		fe.EndColumn = e.End.ColumnNumber() - 1
	}
	if e.SourceLine != "" {
		fe.SourceLines = []perrors.SourceLineEntry{{
			Number: e.Start.LineNumber(),
			Text:   e.SourceLine,
			IsMain: true,
		}}
	}
	return fe
}

// formatErrors is the multierror format for activation errors.
func formatErrors(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", errs[0].Error(), len(errs)-1)
}
