package ast

import (
	"testing"

	"github.com/deepnoodle-ai/superpipe/internal/tmpl"
	"github.com/deepnoodle-ai/superpipe/internal/token"
)

func ident(name string) *Ident {
	return &Ident{Name: name}
}

func TestString(t *testing.T) {
	program := &Program{
		Stmts: []Node{
			&Var{
				Let: token.Position{Line: 1, Column: 1},
				Name: &Ident{
					NamePos: token.Position{Line: 1, Column: 5},
					Name:    "myVar",
				},
				Value: &Ident{
					NamePos: token.Position{Line: 1, Column: 13},
					Name:    "anotherVar",
				},
			},
		},
	}
	if program.String() != "let myVar = anotherVar" {
		t.Errorf("program.String() wrong. got=%q", program.String())
	}
}

func TestExprString(t *testing.T) {
	tests := []struct {
		name     string
		expr     Expr
		expected string
	}{
		{"infix", &Infix{X: ident("a"), Op: ">>", Y: ident("f")}, "(a >> f)"},
		{"not", &Prefix{Op: "not", X: ident("x")}, "(not x)"},
		{"negate", &Prefix{Op: "-", X: ident("x")}, "(-x)"},
		{"spread", &Spread{X: ident("_")}, "*_"},
		{"double spread", &Spread{Double: true, X: ident("_")}, "**_"},
		{"call", &Call{
			Fun:    &GetAttr{X: ident("_"), Attr: ident("m")},
			Args:   []Expr{ident("a"), &Spread{X: ident("b")}},
			Kwargs: []*Keyword{{Name: ident("k"), Value: ident("v")}, {Value: &Spread{Double: true, X: ident("m")}}},
		}, "_.m(a, *b, k=v, **m)"},
		{"index", &Index{X: ident("x"), Index: &Int{Literal: "0"}}, "x[0]"},
		{"slice", &Slice{X: ident("x"), High: &Int{Literal: "2"}}, "x[:2]"},
		{"tuple", &Tuple{Items: []Expr{ident("a")}}, "(a,)"},
		{"pair", &Tuple{Items: []Expr{ident("a"), ident("b")}}, "(a, b)"},
		{"empty tuple", &Tuple{}, "()"},
		{"set", &Set{Items: []Expr{ident("a"), ident("b")}}, "{a, b}"},
		{"map", &Map{Items: []MapItem{
			{Key: &String{Value: "k"}, Value: ident("_")},
			{Value: &Spread{Double: true, X: ident("m")}},
		}}, `{"k": _, **m}`},
		{"string", &String{Value: "a\"b"}, `"a\"b"`},
		{"string with backtick", &String{Value: "a`b"}, `"a\x60b"`},
		{"list comp", &Comprehension{
			Kind: ListComp,
			Elt:  ident("x"),
			Generators: []*ComprehensionFor{{
				Targets: []*Ident{ident("x")},
				Iter:    ident("_"),
				Ifs:     []Expr{ident("x")},
			}},
		}, "[x for x in _ if x]"},
		{"map comp", &Comprehension{
			Kind:  MapComp,
			Key:   ident("k"),
			Value: ident("v"),
			Generators: []*ComprehensionFor{{
				Targets: []*Ident{ident("k"), ident("v")},
				Iter:    ident("_"),
			}},
		}, "{k: v for k, v in _}"},
		{"generator", &Comprehension{
			Kind:       GeneratorComp,
			Elt:        ident("x"),
			Generators: []*ComprehensionFor{{Targets: []*Ident{ident("x")}, Iter: ident("xs")}},
		}, "(x for x in xs)"},
		{"arrow", &Func{
			Arrow:  true,
			Params: []*Ident{ident("x")},
			Body:   &Block{Stmts: []Node{&Return{Value: ident("x")}}},
		}, "((x) => x)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTemplateString(t *testing.T) {
	template, err := tmpl.Parse("a ${x} b ${y}")
	if err != nil {
		t.Fatal(err)
	}
	s := &String{
		Literal:  "a ${x} b ${y}",
		Template: template,
		Exprs:    []Expr{ident("x"), &Infix{X: ident("_"), Op: "+", Y: &Int{Literal: "1"}}},
	}
	expected := "`a ${x} b ${(_ + 1)}`"
	if s.String() != expected {
		t.Errorf("String() = %q, want %q", s.String(), expected)
	}
}

func TestFuncString(t *testing.T) {
	fn := &Func{
		Decorators: []*Decorator{{X: ident("pipes")}},
		Name:       ident("f"),
		Params:     []*Ident{ident("a")},
		Body: &Block{Stmts: []Node{
			&Var{Name: ident("b"), Value: &Infix{X: ident("a"), Op: ">>", Y: ident("g")}},
			&Func{Name: ident("inner"), Body: &Block{Stmts: []Node{&Return{}}}},
			&Return{Value: ident("b")},
		}},
	}
	expected := "@pipes\nfunction f(a) {\n\tlet b = (a >> g)\n\tfunction inner() {\n\t\treturn\n\t}\n\treturn b\n}"
	if fn.String() != expected {
		t.Errorf("String() = %q, want %q", fn.String(), expected)
	}
}

func TestClassString(t *testing.T) {
	class := &Class{
		Decorators: []*Decorator{{X: &Call{Fun: ident("pipes")}}},
		Name:       ident("C"),
		Methods: []*Func{
			{Name: ident("m"), Params: []*Ident{ident("self")}, Body: &Block{}},
		},
	}
	program := &Program{Stmts: []Node{class, ident("C")}}
	expected := "@pipes()\nclass C {\n\tfunction m(self) {}\n}\nC"
	if program.String() != expected {
		t.Errorf("String() = %q, want %q", program.String(), expected)
	}
}

func TestBadExpr(t *testing.T) {
	from := token.Position{Line: 1, Column: 5, File: "test.pipe"}
	to := token.Position{Line: 1, Column: 15, File: "test.pipe"}

	bad := &BadExpr{From: from, To: to}
	if bad.Pos() != from {
		t.Errorf("BadExpr.Pos() = %v, want %v", bad.Pos(), from)
	}
	if bad.End() != to {
		t.Errorf("BadExpr.End() = %v, want %v", bad.End(), to)
	}
	if bad.String() != "<bad expression>" {
		t.Errorf("BadExpr.String() = %q", bad.String())
	}
	var _ Expr = bad
	var _ Stmt = &BadStmt{}
}

func TestPositions(t *testing.T) {
	call := &Call{
		Fun:    &Ident{NamePos: token.Position{Column: 4}, Name: "f"},
		Lparen: token.Position{Column: 5},
		Rparen: token.Position{Column: 6},
	}
	if call.Pos().Column != 4 {
		t.Errorf("Call.Pos() column = %d, want 4", call.Pos().Column)
	}
	if call.End().Column != 7 {
		t.Errorf("Call.End() column = %d, want 7", call.End().Column)
	}
	ret := &Return{Return: token.Position{Column: 2}}
	if ret.End().Column != 8 {
		t.Errorf("Return.End() column = %d, want 8", ret.End().Column)
	}
}
