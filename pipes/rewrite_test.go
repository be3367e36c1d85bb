package pipes

import (
	"bytes"
	"context"
	"testing"

	"github.com/deepnoodle-ai/superpipe/ast"
	"github.com/deepnoodle-ai/superpipe/parser"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseExpr(t *testing.T, input string) ast.Expr {
	t.Helper()
	program, err := parser.Parse(context.Background(), input)
	require.Nil(t, err)
	require.Len(t, program.Stmts, 1)
	expr, ok := program.Stmts[0].(ast.Expr)
	require.True(t, ok, "expected an expression statement")
	return expr
}

func rewrite(t *testing.T, input string) string {
	t.Helper()
	return NewRewriter().RewriteExpr(parseExpr(t, input)).String()
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Identity chain
		{"v >> _", "v"},
		{"v >> _ >> _ >> _", "v"},
		{"v << _", "v"},
		// Argument injection
		{"v >> f(x, y)", "f(v, x, y)"},
		{"v << f(x, y)", "f(x, y, v)"},
		{"v >> f()", "f(v)"},
		{"v << f()", "f(v)"},
		{"v << f(x, k=1)", "f(x, v, k=1)"},
		// Implicit call. Member access is always handled, even without a
		// placeholder, so it is never called.
		{"v >> f", "f(v)"},
		{"v << f", "f(v)"},
		{"v >> a.b", "a.b"},
		{"v >> (x => x + 1)", "((x) => (x + 1))(v)"},
		{"v >> 5", "5(v)"},
		{"v >> -f", "(-f)(v)"},
		{"v >> `plain`", `"plain"(v)`},
		// Member access receiver
		{"v >> _.m(_)", "v.m(_)"},
		{"v >> _.m(a, _)", "v.m(a, _)"},
		{"v >> _.x.m()", "v.x.m()"},
		{"v >> obj.m(_)", "obj.m(v)"},
		{"v >> obj.m(a)", "obj.m(v, a)"},
		{"v << obj.m(a)", "obj.m(a, v)"},
		{"v >> _.attr", "v.attr"},
		// Index and slice
		{"v >> _[0]", "v[0]"},
		{"v >> _[1:]", "v[1:]"},
		{"v >> x[_]", "x[_]"},
		// Binary operators
		{"v >> _ + 1", "(v + 1)"},
		{"v >> 2 ** _", "(2 ** v)"},
		{"v >> _ * _", "(v * v)"},
		{"v >> x - y", "(x - y)"},
		// Call arguments
		{"v >> f(k=_)", "f(k=v)"},
		{"m >> f(**_)", "f(**m)"},
		{"[1, 2] >> f(0, *_)", "f(0, *[1, 2])"},
		{"v >> f(g(_))", "f(v, g(v))"},
		{"v >> f(_ >> g)", "f(v, g(v))"},
		{"v >> f(a >> g(_))", "f(v, g(a))"},
		// Collections
		{"v >> {A, B, _}", "{A, B, v}"},
		{"v >> [_, _, C]", "[v, v, C]"},
		{"[a, b] >> [1, *_, 9]", "[1, *[a, b], 9]"},
		{"v >> (1, _)", "(1, v)"},
		{"v >> (_,)", "(v,)"},
		{"[1, 2] >> (0, *_)", "(0, *[1, 2])"},
		{"v >> [1, 2, 3]", "[1, 2, 3]"},
		{"v >> []", "[]"},
		{"v >> ()", "()"},
		{"v >> [[_]]", "[[v]]"},
		// Mappings
		{`v >> {"a": _}`, `{"a": v}`},
		{"v >> {_: 0}", "{v: 0}"},
		{"m >> {**_, k: 1}", "{**m, k: 1}"},
		{"v >> {}", "{}"},
		{`v >> {"a": 4 + _ + 5}`, `{"a": ((4 + v) + 5)}`},
		// Templates
		{"v >> `prefix ${_} suffix`", "`prefix ${v} suffix`"},
		{"v >> `${_.name}: ${_ + 1}`", "`${v.name}: ${(v + 1)}`"},
		{"v >> `${*_}`", "`${*v}`"},
		// Comprehensions
		{"range_of(5) >> [x * x for x in _]", "[(x * x) for x in range_of(5)]"},
		{"r >> {x for x in _}", "{x for x in r}"},
		{"d >> {k: v for k, v in _.items()}", "{k: v for k, v in d.items()}"},
		{"r >> (x for x in _ if x)", "(x for x in r if x)"},
		{"r >> [x for x in xs if _]", "[x for x in xs if _]"},
		// Chains
		{"5 >> _ * 5 >> [_, 2] >> sum", "sum([(5 * 5), 2])"},
		{"1 >> f >> g(2) << h(3)", "h(3, g(f(1), 2))"},
		{"[1, 2] >> sum >> _.bit_length()", "sum([1, 2]).bit_length()"},
		{"x == v >> f", "(x == f(v))"},
		{"a + (v >> f)", "(a + f(v))"},
		{"v >> f(_) >> g", "g(f(v))"},
		// Not a pipe
		{"a + b", "(a + b)"},
		{"f(_)", "f(_)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, rewrite(t, tt.input))
		})
	}
}

func TestRewriteAliasesLeft(t *testing.T) {
	expr := parseExpr(t, "v >> [_, _]")
	left := expr.(*ast.Infix).X
	result := NewRewriter().RewriteExpr(expr)
	list, ok := result.(*ast.List)
	require.True(t, ok)
	require.Len(t, list.Items, 2)
	assert.Same(t, left, list.Items[0])
	assert.Same(t, left, list.Items[1])
}

func TestRewriteLeavesLeftUnchanged(t *testing.T) {
	expr := parseExpr(t, "a.b(_) >> f(_)")
	left := expr.(*ast.Infix).X
	result := NewRewriter().RewriteExpr(expr)
	assert.Equal(t, "f(a.b(_))", result.String())
	assert.Equal(t, "a.b(_)", left.String())
}

func TestRewriteProgram(t *testing.T) {
	input := `let a = v >> f
function g(x) {
	return x >> h(1) << k
}
a = [1, 2] >> sum`
	program, err := parser.Parse(context.Background(), input)
	require.Nil(t, err)

	r := NewRewriter()
	result, err := r.Transform(program)
	require.Nil(t, err)
	assert.Same(t, program, result)
	assert.Equal(t, `let a = f(v)
function g(x) {
	return k(h(x, 1))
}
a = sum([1, 2])`, result.String())
	assert.Equal(t, 4, r.Links())
}

func TestRewriteIsIdempotent(t *testing.T) {
	program, err := parser.Parse(context.Background(), "let y = v >> f(_) >> [1, *_]")
	require.Nil(t, err)
	r := NewRewriter()
	r.Rewrite(program)
	first := program.String()
	r.Rewrite(program)
	assert.Equal(t, first, program.String())
	assert.Equal(t, 2, r.Links())
}

func TestRewriteCustomPlaceholder(t *testing.T) {
	expr := parseExpr(t, "v >> f(it, _)")
	result := NewRewriter(WithPlaceholder("it")).RewriteExpr(expr)
	assert.Equal(t, "f(v, _)", result.String())
}

func TestRewriteLogsLinks(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	NewRewriter(WithLogger(logger)).RewriteExpr(parseExpr(t, "v >> f"))
	assert.Contains(t, buf.String(), `"message":"reduced pipe"`)
	assert.Contains(t, buf.String(), `"to":"f(v)"`)
	assert.Contains(t, buf.String(), `"line":1`)

	buf.Reset()
	NewRewriter(WithLogger(logger.Level(zerolog.InfoLevel))).RewriteExpr(parseExpr(t, "v >> f"))
	assert.Empty(t, buf.String())
}

func TestRewriteNil(t *testing.T) {
	assert.Nil(t, NewRewriter().RewriteExpr(nil))
}
