package syntax

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/superpipe/ast"
	"github.com/deepnoodle-ai/superpipe/errors"
	"github.com/deepnoodle-ai/superpipe/internal/token"
)

// ValidationError represents a rule violation found in a program.
type ValidationError struct {
	Code     errors.ErrorCode // optional error code
	Message  string           // description of the violation
	Node     ast.Node         // the offending node
	Position token.Position   // source location
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	pos := e.Position
	if pos.File != "" {
		return fmt.Sprintf("%s at %s:%d:%d", e.Message, pos.File, pos.LineNumber(), pos.ColumnNumber())
	}
	return fmt.Sprintf("%s at line %d, column %d", e.Message, pos.LineNumber(), pos.ColumnNumber())
}

// ToFormatted converts the violation to a FormattedError for display.
func (e *ValidationError) ToFormatted() *errors.FormattedError {
	fe := &errors.FormattedError{
		Code:     e.Code,
		Kind:     "validation error",
		Message:  e.Message,
		Filename: e.Position.File,
		Line:     e.Position.LineNumber(),
		Column:   e.Position.ColumnNumber(),
	}
	if e.Node != nil {
		end := e.Node.End()
		if end.Line == e.Position.Line {
			fe.EndColumn = end.ColumnNumber() - 1
		}
	}
	return fe
}

// ValidationErrors wraps multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError
}

// NewValidationErrors creates a ValidationErrors from a slice of errors.
func NewValidationErrors(errs []ValidationError) *ValidationErrors {
	return &ValidationErrors{Errors: errs}
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Errors[0].Error()
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
		for _, err := range e.Errors {
			fmt.Fprintf(&b, "  - %s\n", err.Error())
		}
		return b.String()
	}
}

// Unwrap returns the first error for errors.Is/As compatibility.
func (e *ValidationErrors) Unwrap() error {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}
	return nil
}

// ToFormattedMultiple converts every violation for display.
func (e *ValidationErrors) ToFormattedMultiple() []*errors.FormattedError {
	result := make([]*errors.FormattedError, 0, len(e.Errors))
	for i := range e.Errors {
		result = append(result, e.Errors[i].ToFormatted())
	}
	return result
}

// Validator inspects an AST and returns validation errors.
// Validators should not modify the AST.
type Validator interface {
	// Validate checks the AST and returns any validation errors.
	// Multiple errors may be returned to show all violations at once.
	Validate(program *ast.Program) []ValidationError
}

// ValidatorFunc is an adapter to use a function as a Validator.
type ValidatorFunc func(*ast.Program) []ValidationError

// Validate implements the Validator interface.
func (f ValidatorFunc) Validate(p *ast.Program) []ValidationError {
	return f(p)
}

// Validate runs every validator against the program and returns the
// combined violations as a *ValidationErrors, or nil if there are none.
func Validate(program *ast.Program, validators ...Validator) error {
	var all []ValidationError
	for _, v := range validators {
		all = append(all, v.Validate(program)...)
	}
	if len(all) == 0 {
		return nil
	}
	return NewValidationErrors(all)
}
