package pipes

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/deepnoodle-ai/superpipe/ast"
	perrors "github.com/deepnoodle-ai/superpipe/errors"
	"github.com/deepnoodle-ai/superpipe/parser"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, err := parser.Parse(context.Background(), input, parser.WithFilename("main.pipe"))
	require.Nil(t, err)
	return program
}

func activate(t *testing.T, input string, opts ...Option) string {
	t.Helper()
	program := parseProgram(t, input)
	require.Nil(t, NewActivator(opts...).Activate(program))
	return program.String()
}

func TestActivate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"bare decorator",
			"@pipes\nfunction f(v) {\n\treturn v >> g\n}\nlet y = v >> g",
			"function f(v) {\n\treturn g(v)\n}\nlet y = (v >> g)",
		},
		{
			"called decorator",
			"@pipes()\nfunction f(v) {\n\treturn v >> g(1)\n}",
			"function f(v) {\n\treturn g(v, 1)\n}",
		},
		{
			"qualified decorator",
			"@superpipe.pipes\nfunction f(v) {\n\treturn v << g(1)\n}",
			"function f(v) {\n\treturn g(1, v)\n}",
		},
		{
			"outer decorator is kept",
			"@memoize\n@pipes\nfunction f(v) {\n\treturn v >> g\n}",
			"@memoize\nfunction f(v) {\n\treturn g(v)\n}",
		},
		{
			"class",
			"@pipes\nclass C {\n\tfunction m(self, v) {\n\t\treturn v >> _ + 1\n\t}\n\tfunction n(self) {\n\t\treturn [1, 2] >> sum\n\t}\n}",
			"class C {\n\tfunction m(self, v) {\n\t\treturn (v + 1)\n\t}\n\tfunction n(self) {\n\t\treturn sum([1, 2])\n\t}\n}",
		},
		{
			"method",
			"class C {\n\t@pipes\n\tfunction m(self, v) {\n\t\treturn v >> f\n\t}\n\tfunction n(self, v) {\n\t\treturn v >> f\n\t}\n}",
			"class C {\n\tfunction m(self, v) {\n\t\treturn f(v)\n\t}\n\tfunction n(self, v) {\n\t\treturn (v >> f)\n\t}\n}",
		},
		{
			"nested definition",
			"function outer() {\n\t@pipes\n\tfunction inner(v) {\n\t\treturn v >> g\n\t}\n\treturn 1 >> h\n}",
			"function outer() {\n\tfunction inner(v) {\n\t\treturn g(v)\n\t}\n\treturn (1 >> h)\n}",
		},
		{
			"nested decorated definition inside target",
			"@pipes\nfunction outer(v) {\n\t@pipes\n\tfunction inner(w) {\n\t\treturn w >> g\n\t}\n\treturn v >> inner\n}",
			"function outer(v) {\n\tfunction inner(w) {\n\t\treturn g(w)\n\t}\n\treturn inner(v)\n}",
		},
		{
			"pipes inside nested function literal",
			"@pipes\nfunction f(xs) {\n\treturn xs >> map(x => x >> _ * 2)\n}",
			"function f(xs) {\n\treturn map(xs, ((x) => (x * 2)))\n}",
		},
		{
			"no decorator",
			"function f(v) {\n\treturn v >> g\n}",
			"function f(v) {\n\treturn (v >> g)\n}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, activate(t, tt.input))
		})
	}
}

func TestActivateGlobal(t *testing.T) {
	input := "let y = v >> g\n@pipes\nfunction f(v) {\n\treturn v >> _.x\n}"
	assert.Equal(t, "let y = g(v)\nfunction f(v) {\n\treturn v.x\n}",
		activate(t, input, WithGlobal(true)))
}

func TestActivateCustomDecorator(t *testing.T) {
	input := "@chain\nfunction f(v) {\n\treturn v >> g\n}\n@pipes\nfunction h(v) {\n\treturn v >> g\n}"
	assert.Equal(t, "function f(v) {\n\treturn g(v)\n}\n@pipes\nfunction h(v) {\n\treturn (v >> g)\n}",
		activate(t, input, WithDecorator("chain")))
}

func TestActivateIsIdempotent(t *testing.T) {
	program := parseProgram(t, "@pipes\nfunction f(v) {\n\treturn v >> g >> h(1)\n}")
	a := NewActivator()
	require.Nil(t, a.Activate(program))
	first := program.String()
	require.Nil(t, a.Activate(program))
	assert.Equal(t, first, program.String())
	assert.Equal(t, "function f(v) {\n\treturn h(g(v), 1)\n}", first)
}

func TestActivateWrappedTarget(t *testing.T) {
	input := "@pipes\n@memoize\nfunction f(v) {\n\treturn v >> g\n}"
	program := parseProgram(t, input)
	before := program.String()

	err := NewActivator(WithSource(input)).Activate(program)
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedTarget))

	var actErr *ActivationError
	require.True(t, errors.As(err, &actErr))
	assert.Equal(t, perrors.E2002, actErr.Code)
	assert.Equal(t, "@pipes would be applied to the result of @memoize instead of the definition", actErr.Message)
	assert.Equal(t, "activation error: @pipes would be applied to the result of @memoize instead of the definition (main.pipe:1:1)", err.Error())

	// Nothing is rewritten when activation fails
	assert.Equal(t, before, program.String())

	fe := actErr.ToFormatted()
	assert.Equal(t, "activation error", fe.Kind)
	assert.Equal(t, "main.pipe", fe.Filename)
	assert.Equal(t, 1, fe.Line)
	assert.Equal(t, 1, fe.Column)
	assert.Equal(t, 6, fe.EndColumn)
	require.Len(t, fe.SourceLines, 1)
	assert.Equal(t, "@pipes", fe.SourceLines[0].Text)
	assert.Equal(t, "move @pipes so that it is the last decorator", fe.Hint)
}

func TestActivatePlainCall(t *testing.T) {
	program := parseProgram(t, "let g = pipes(f)")
	err := NewActivator().Activate(program)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedTarget)
	var actErr *ActivationError
	require.True(t, errors.As(err, &actErr))
	assert.Equal(t, perrors.E2001, actErr.Code)
	assert.Equal(t, "pipes must be used as a decorator on a function or class definition", actErr.Message)
}

func TestActivateIgnoresMethodsSharingName(t *testing.T) {
	input := "let n = conn.pipes()\nlet m = conn.pipes(1, 2)\nlet p = a.b.pipes(f)\n@pipes\nfunction f(v) {\n\treturn v >> g\n}"
	assert.Equal(t,
		"let n = conn.pipes()\nlet m = conn.pipes(1, 2)\nlet p = a.b.pipes(f)\nfunction f(v) {\n\treturn g(v)\n}",
		activate(t, input))
}

func TestActivateCollectsAllErrors(t *testing.T) {
	input := `@pipes
@memoize
function f(v) {
	return v >> g
}
@pipes
function ok(v) {
	return v >> g
}
let h = lib.pipes(f)`
	program := parseProgram(t, input)
	before := program.String()

	err := NewActivator().Activate(program)
	require.NotNil(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 2)
	assert.Contains(t, err.Error(), "(and 1 more errors)")

	var first, second *ActivationError
	require.True(t, errors.As(merr.Errors[0], &first))
	require.True(t, errors.As(merr.Errors[1], &second))
	assert.Equal(t, perrors.E2002, first.Code)
	assert.Equal(t, perrors.E2001, second.Code)
	assert.Equal(t, 10, second.Start.LineNumber())

	// The valid definition is not rewritten either
	assert.Equal(t, before, program.String())
	assert.Len(t, perrors.Flatten(err), 2)
}

func TestActivatorTransform(t *testing.T) {
	program := parseProgram(t, "@pipes\nfunction f(v) {\n\treturn v >> g\n}")
	result, err := NewActivator().Transform(program)
	require.Nil(t, err)
	assert.Same(t, program, result)

	result, err = NewActivator().Transform(parseProgram(t, "pipes(f)"))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnsupportedTarget)
}

func TestActivateWarnsOnNearMiss(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	input := "@pipe\nfunction f(v) {\n\treturn v >> g\n}"
	assert.Equal(t, "@pipe\nfunction f(v) {\n\treturn (v >> g)\n}",
		activate(t, input, WithLogger(logger)))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "did you mean @pipes?")

	buf.Reset()
	activate(t, "@memoize\nfunction f(v) {\n\treturn v\n}", WithLogger(logger))
	assert.NotContains(t, buf.String(), "did you mean")
}
