package ast

import (
	"bytes"
	"strings"

	"github.com/deepnoodle-ai/superpipe/internal/token"
)

// Ident is an expression node that refers to a variable by name.
type Ident struct {
	NamePos token.Position // position of identifier
	Name    string         // identifier name
}

func (x *Ident) exprNode() {}

func (x *Ident) Pos() token.Position { return x.NamePos }
func (x *Ident) End() token.Position { return x.NamePos.Advance(len(x.Name)) }

func (x *Ident) String() string { return x.Name }

// Prefix is an operator expression where the operator precedes the operand.
// Examples include "!false", "not x" and "-x".
type Prefix struct {
	OpPos token.Position // position of operator
	Op    string         // operator: "!", "-", "not"
	X     Expr           // operand
}

func (x *Prefix) exprNode() {}

func (x *Prefix) Pos() token.Position { return x.OpPos }
func (x *Prefix) End() token.Position { return x.X.End() }

func (x *Prefix) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(x.Op)
	if x.Op == "not" {
		out.WriteString(" ")
	}
	out.WriteString(x.X.String())
	out.WriteString(")")
	return out.String()
}

// Spread marks an expression whose contents are unpacked into the enclosing
// call, collection or mapping. A single star spreads positionally; a double
// star spreads a mapping into keyword arguments or map entries.
type Spread struct {
	Star   token.Position // position of "*" or "**"
	Double bool           // true for "**"
	X      Expr           // expression being spread
}

func (x *Spread) exprNode() {}

func (x *Spread) Pos() token.Position { return x.Star }
func (x *Spread) End() token.Position { return x.X.End() }

func (x *Spread) String() string {
	if x.Double {
		return "**" + x.X.String()
	}
	return "*" + x.X.String()
}

// Infix is an operator expression where the operator is between the operands.
// Examples include "x + y", "5 - 1" and the pipe operators "x >> f" and
// "f << x".
type Infix struct {
	X     Expr           // left operand
	OpPos token.Position // position of operator
	Op    string         // operator: "+", "-", "*", "/", ">>", "<<", etc.
	Y     Expr           // right operand
}

func (x *Infix) exprNode() {}

func (x *Infix) Pos() token.Position { return x.X.Pos() }
func (x *Infix) End() token.Position { return x.Y.End() }

func (x *Infix) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(x.X.String())
	out.WriteString(" " + x.Op + " ")
	out.WriteString(x.Y.String())
	out.WriteString(")")
	return out.String()
}

// Keyword is a named argument in a call. A keyword with a nil Name is a
// mapping spread ("**kwargs") and its Value is a double Spread.
type Keyword struct {
	Name  *Ident // argument name; nil for "**" spreads
	Value Expr   // argument value
}

func (x *Keyword) Pos() token.Position {
	if x.Name != nil {
		return x.Name.Pos()
	}
	return x.Value.Pos()
}

func (x *Keyword) End() token.Position { return x.Value.End() }

func (x *Keyword) String() string {
	if x.Name == nil {
		return x.Value.String()
	}
	return x.Name.Name + "=" + x.Value.String()
}

// Call is an expression node that describes the invocation of a function.
// Positional arguments always precede keyword arguments.
type Call struct {
	Fun    Expr           // function expression
	Lparen token.Position // position of "("
	Args   []Expr         // positional arguments (Expr or Spread)
	Kwargs []*Keyword     // keyword arguments in source order
	Rparen token.Position // position of ")"
}

func (x *Call) exprNode() {}

func (x *Call) Pos() token.Position { return x.Fun.Pos() }
func (x *Call) End() token.Position { return x.Rparen.Advance(1) }

func (x *Call) String() string {
	var out bytes.Buffer
	args := make([]string, 0, len(x.Args)+len(x.Kwargs))
	for _, a := range x.Args {
		args = append(args, a.String())
	}
	for _, kw := range x.Kwargs {
		args = append(args, kw.String())
	}
	out.WriteString(x.Fun.String())
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")
	return out.String()
}

// GetAttr is an expression node that describes the access of an attribute on
// an object.
type GetAttr struct {
	X      Expr           // object expression
	Period token.Position // position of "."
	Attr   *Ident         // attribute name
}

func (x *GetAttr) exprNode() {}

func (x *GetAttr) Pos() token.Position { return x.X.Pos() }
func (x *GetAttr) End() token.Position { return x.Attr.End() }

func (x *GetAttr) String() string {
	return x.X.String() + "." + x.Attr.Name
}

// Index is an expression node that describes indexing on an object.
type Index struct {
	X      Expr           // object expression
	Lbrack token.Position // position of "["
	Index  Expr           // index expression
	Rbrack token.Position // position of "]"
}

func (x *Index) exprNode() {}

func (x *Index) Pos() token.Position { return x.X.Pos() }
func (x *Index) End() token.Position { return x.Rbrack.Advance(1) }

func (x *Index) String() string {
	return x.X.String() + "[" + x.Index.String() + "]"
}

// Slice is an expression node that describes a slicing operation on an object.
type Slice struct {
	X      Expr           // object expression
	Lbrack token.Position // position of "["
	Low    Expr           // begin of slice range; or nil
	High   Expr           // end of slice range; or nil
	Rbrack token.Position // position of "]"
}

func (x *Slice) exprNode() {}

func (x *Slice) Pos() token.Position { return x.X.Pos() }
func (x *Slice) End() token.Position { return x.Rbrack.Advance(1) }

func (x *Slice) String() string {
	var out bytes.Buffer
	out.WriteString(x.X.String())
	out.WriteString("[")
	if x.Low != nil {
		out.WriteString(x.Low.String())
	}
	out.WriteString(":")
	if x.High != nil {
		out.WriteString(x.High.String())
	}
	out.WriteString("]")
	return out.String()
}

// ComprehensionKind identifies the collection a comprehension produces.
type ComprehensionKind int

const (
	ListComp ComprehensionKind = iota
	SetComp
	MapComp
	GeneratorComp
)

func (k ComprehensionKind) String() string {
	switch k {
	case ListComp:
		return "list"
	case SetComp:
		return "set"
	case MapComp:
		return "map"
	case GeneratorComp:
		return "generator"
	}
	return "unknown"
}

func (k ComprehensionKind) brackets() (string, string) {
	switch k {
	case SetComp, MapComp:
		return "{", "}"
	case GeneratorComp:
		return "(", ")"
	}
	return "[", "]"
}

// ComprehensionFor is one "for targets in iter if cond" clause of a
// comprehension.
type ComprehensionFor struct {
	For     token.Position // position of "for"
	Targets []*Ident       // loop variables
	Iter    Expr           // source being iterated
	Ifs     []Expr         // filter conditions
}

func (x *ComprehensionFor) Pos() token.Position { return x.For }

func (x *ComprehensionFor) End() token.Position {
	if len(x.Ifs) > 0 {
		return x.Ifs[len(x.Ifs)-1].End()
	}
	return x.Iter.End()
}

func (x *ComprehensionFor) String() string {
	var out bytes.Buffer
	targets := make([]string, 0, len(x.Targets))
	for _, t := range x.Targets {
		targets = append(targets, t.Name)
	}
	out.WriteString("for ")
	out.WriteString(strings.Join(targets, ", "))
	out.WriteString(" in ")
	out.WriteString(x.Iter.String())
	for _, cond := range x.Ifs {
		out.WriteString(" if ")
		out.WriteString(cond.String())
	}
	return out.String()
}

// Comprehension builds a list, set, map or generator from one or more
// generator clauses. Map comprehensions use Key and Value; all other kinds
// use Elt.
type Comprehension struct {
	Kind       ComprehensionKind
	Open       token.Position // position of the opening bracket
	Elt        Expr           // element expression; nil for maps
	Key        Expr           // key expression for maps
	Value      Expr           // value expression for maps
	Generators []*ComprehensionFor
	Close      token.Position // position of the closing bracket
}

func (x *Comprehension) exprNode() {}

func (x *Comprehension) Pos() token.Position { return x.Open }
func (x *Comprehension) End() token.Position { return x.Close.Advance(1) }

func (x *Comprehension) String() string {
	var out bytes.Buffer
	open, close := x.Kind.brackets()
	out.WriteString(open)
	if x.Kind == MapComp {
		out.WriteString(x.Key.String())
		out.WriteString(": ")
		out.WriteString(x.Value.String())
	} else {
		out.WriteString(x.Elt.String())
	}
	for _, gen := range x.Generators {
		out.WriteString(" ")
		out.WriteString(gen.String())
	}
	out.WriteString(close)
	return out.String()
}
