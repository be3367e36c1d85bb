package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/superpipe/internal/tmpl"
	"github.com/deepnoodle-ai/superpipe/internal/token"
)

// Int is an expression node that holds an integer literal.
type Int struct {
	ValuePos token.Position // position of literal
	Literal  string         // original literal text
	Value    int64          // parsed value
}

func (x *Int) exprNode() {}

func (x *Int) Pos() token.Position { return x.ValuePos }
func (x *Int) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Int) String() string { return x.Literal }

// Float is an expression node that holds a floating point literal.
type Float struct {
	ValuePos token.Position // position of literal
	Literal  string         // original literal text
	Value    float64        // parsed value
}

func (x *Float) exprNode() {}

func (x *Float) Pos() token.Position { return x.ValuePos }
func (x *Float) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Float) String() string { return x.Literal }

// Nil is an expression node that holds a nil literal.
type Nil struct {
	NilPos token.Position // position of "nil"
}

func (x *Nil) exprNode() {}

func (x *Nil) Pos() token.Position { return x.NilPos }
func (x *Nil) End() token.Position { return x.NilPos.Advance(3) } // len("nil")

func (x *Nil) String() string { return "nil" }

// Bool is an expression node that holds a boolean literal.
type Bool struct {
	ValuePos token.Position // position of literal
	Literal  string         // "true" or "false"
	Value    bool           // parsed value
}

func (x *Bool) exprNode() {}

func (x *Bool) Pos() token.Position { return x.ValuePos }
func (x *Bool) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Bool) String() string { return x.Literal }

// String is an expression node that holds a string literal. A backtick string
// containing "${...}" holes is a template: Template holds its fragments and
// Exprs holds one parsed expression per hole, in order.
type String struct {
	ValuePos token.Position // position of opening quote
	ValueEnd token.Position // position immediately after the closing quote
	Literal  string         // the literal text between the quotes
	Value    string         // the unquoted string value
	Template *tmpl.Template // template if this is a template string
	Exprs    []Expr         // embedded expressions for templates
}

func (x *String) exprNode() {}

func (x *String) Pos() token.Position { return x.ValuePos }
func (x *String) End() token.Position {
	if x.ValueEnd.IsValid() {
		return x.ValueEnd
	}
	return x.ValuePos.Advance(len(x.Literal) + 2)
}

func (x *String) String() string {
	if x.Template == nil {
		// A backtick would end an enclosing template string.
		return strings.ReplaceAll(strconv.Quote(x.Value), "`", `\x60`)
	}
	var out bytes.Buffer
	out.WriteString("`")
	var i int
	for _, frag := range x.Template.Fragments() {
		if !frag.IsVariable() {
			out.WriteString(frag.Value())
			continue
		}
		out.WriteString("${")
		if i < len(x.Exprs) {
			out.WriteString(x.Exprs[i].String())
		}
		out.WriteString("}")
		i++
	}
	out.WriteString("`")
	return out.String()
}

// Func is an expression node that holds a function literal. Named functions
// are also statements and may carry decorators.
type Func struct {
	Decorators []*Decorator   // decorators, outermost first
	Func       token.Position // position of "function" keyword or first parameter
	Name       *Ident         // function name; nil for anonymous functions
	Lparen     token.Position // position of "("
	Params     []*Ident       // parameter names
	Rparen     token.Position // position of ")"
	Body       *Block         // function body
	Arrow      bool           // written as "params => expr"
}

func (x *Func) exprNode() {}
func (x *Func) stmtNode() {} // named functions are also statements

func (x *Func) Pos() token.Position {
	if len(x.Decorators) > 0 {
		return x.Decorators[0].Pos()
	}
	return x.Func
}

func (x *Func) End() token.Position {
	if x.Body != nil {
		return x.Body.End()
	}
	return x.Rparen.Advance(1)
}

// ArrowBody returns the expression an arrow function evaluates to, or nil if
// the function is not in arrow form.
func (x *Func) ArrowBody() Expr {
	if !x.Arrow || x.Name != nil || x.Body == nil || len(x.Body.Stmts) != 1 {
		return nil
	}
	ret, ok := x.Body.Stmts[0].(*Return)
	if !ok || ret.Value == nil {
		return nil
	}
	return ret.Value
}

func (x *Func) String() string {
	var out bytes.Buffer
	x.write(&out, 0)
	return out.String()
}

func (x *Func) write(out *bytes.Buffer, depth int) {
	writeDecorators(out, x.Decorators, depth)
	params := make([]string, 0, len(x.Params))
	for _, p := range x.Params {
		params = append(params, p.Name)
	}
	if body := x.ArrowBody(); body != nil {
		out.WriteString("((")
		out.WriteString(strings.Join(params, ", "))
		out.WriteString(") => ")
		out.WriteString(body.String())
		out.WriteString(")")
		return
	}
	out.WriteString("function")
	if x.Name != nil {
		out.WriteString(" ")
		out.WriteString(x.Name.Name)
	}
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	var stmts []Node
	if x.Body != nil {
		stmts = x.Body.Stmts
	}
	writeBody(out, stmts, depth)
}

// List is an expression node that builds a list data structure.
type List struct {
	Lbrack token.Position // position of "["
	Items  []Expr         // list elements
	Rbrack token.Position // position of "]"
}

func (x *List) exprNode() {}

func (x *List) Pos() token.Position { return x.Lbrack }
func (x *List) End() token.Position { return x.Rbrack.Advance(1) }

func (x *List) String() string {
	return "[" + joinExprs(x.Items) + "]"
}

// Tuple is an expression node that builds an immutable sequence.
type Tuple struct {
	Lparen token.Position // position of "("
	Items  []Expr         // tuple elements
	Rparen token.Position // position of ")"
}

func (x *Tuple) exprNode() {}

func (x *Tuple) Pos() token.Position { return x.Lparen }
func (x *Tuple) End() token.Position { return x.Rparen.Advance(1) }

func (x *Tuple) String() string {
	if len(x.Items) == 1 {
		return "(" + x.Items[0].String() + ",)"
	}
	return "(" + joinExprs(x.Items) + ")"
}

// Set is an expression node that builds a set. Sets always have at least one
// item, since "{}" is an empty map.
type Set struct {
	Lbrace token.Position // position of "{"
	Items  []Expr         // set elements
	Rbrace token.Position // position of "}"
}

func (x *Set) exprNode() {}

func (x *Set) Pos() token.Position { return x.Lbrace }
func (x *Set) End() token.Position { return x.Rbrace.Advance(1) }

func (x *Set) String() string {
	return "{" + joinExprs(x.Items) + "}"
}

// MapItem represents a single key-value pair in a map literal.
// For spreads ("**m"), Key is nil and Value is a double Spread.
type MapItem struct {
	Key   Expr // nil for spread expressions
	Value Expr
}

// Map is an expression node that builds a map data structure.
type Map struct {
	Lbrace token.Position // position of "{"
	Items  []MapItem      // ordered items (key-value pairs or spreads)
	Rbrace token.Position // position of "}"
}

func (x *Map) exprNode() {}

func (x *Map) Pos() token.Position { return x.Lbrace }
func (x *Map) End() token.Position { return x.Rbrace.Advance(1) }

// HasSpread returns true if any items are spread expressions
func (x *Map) HasSpread() bool {
	for _, item := range x.Items {
		if item.Key == nil {
			return true
		}
	}
	return false
}

func (x *Map) String() string {
	pairs := make([]string, 0, len(x.Items))
	for _, item := range x.Items {
		if item.Key == nil {
			pairs = append(pairs, item.Value.String())
		} else {
			pairs = append(pairs, item.Key.String()+": "+item.Value.String())
		}
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

func joinExprs(exprs []Expr) string {
	items := make([]string, 0, len(exprs))
	for _, e := range exprs {
		items = append(items, e.String())
	}
	return strings.Join(items, ", ")
}
