package ast

import (
	"bytes"
	"strings"

	"github.com/deepnoodle-ai/superpipe/internal/token"
)

// Program represents a complete program.
type Program struct {
	Stmts []Node // statements in the program
}

func (x *Program) Pos() token.Position {
	if len(x.Stmts) > 0 {
		return x.Stmts[0].Pos()
	}
	return token.NoPos
}

func (x *Program) End() token.Position {
	if n := len(x.Stmts); n > 0 {
		return x.Stmts[n-1].End()
	}
	return token.NoPos
}

func (x *Program) String() string {
	var out bytes.Buffer
	for i, stmt := range x.Stmts {
		if i > 0 {
			out.WriteString("\n")
		}
		writeStmt(&out, stmt, 0)
	}
	return out.String()
}

// Block is a node that holds a sequence of statements, such as a function
// body.
type Block struct {
	Lbrace token.Position // position of "{"
	Stmts  []Node         // statements in the block
	Rbrace token.Position // position of "}"
}

func (x *Block) stmtNode() {}

func (x *Block) Pos() token.Position { return x.Lbrace }
func (x *Block) End() token.Position { return x.Rbrace.Advance(1) }

func (x *Block) String() string {
	var out bytes.Buffer
	writeBody(&out, x.Stmts, 0)
	return out.String()
}

// Var is a statement that declares a variable: "let x = value".
type Var struct {
	Let   token.Position // position of "let"
	Name  *Ident         // variable name
	Value Expr           // initial value
}

func (x *Var) stmtNode() {}

func (x *Var) Pos() token.Position { return x.Let }
func (x *Var) End() token.Position { return x.Value.End() }

func (x *Var) String() string {
	return "let " + x.Name.Name + " = " + x.Value.String()
}

// Assign is a statement that assigns to a variable, attribute or index:
// "x = value", "obj.attr = value", "items[i] = value".
type Assign struct {
	Target Expr           // *Ident, *GetAttr or *Index
	OpPos  token.Position // position of "="
	Value  Expr           // assigned value
}

func (x *Assign) stmtNode() {}

func (x *Assign) Pos() token.Position { return x.Target.Pos() }
func (x *Assign) End() token.Position { return x.Value.End() }

func (x *Assign) String() string {
	return x.Target.String() + " = " + x.Value.String()
}

// Return is a statement that returns from a function.
type Return struct {
	Return token.Position // position of "return"
	Value  Expr           // result; nil for a bare return
}

func (x *Return) stmtNode() {}

func (x *Return) Pos() token.Position { return x.Return }

func (x *Return) End() token.Position {
	if x.Value != nil {
		return x.Value.End()
	}
	return x.Return.Advance(6) // len("return")
}

func (x *Return) String() string {
	if x.Value == nil {
		return "return"
	}
	return "return " + x.Value.String()
}

// Decorator is an "@expr" line attached to a function or class definition.
type Decorator struct {
	At token.Position // position of "@"
	X  Expr           // decorator expression
}

func (x *Decorator) Pos() token.Position { return x.At }
func (x *Decorator) End() token.Position { return x.X.End() }

func (x *Decorator) String() string { return "@" + x.X.String() }

// Class is a statement that defines a class and its methods.
type Class struct {
	Decorators []*Decorator   // decorators, outermost first
	Class      token.Position // position of "class"
	Name       *Ident         // class name
	Lbrace     token.Position // position of "{"
	Methods    []*Func        // method definitions
	Rbrace     token.Position // position of "}"
}

func (x *Class) stmtNode() {}

func (x *Class) Pos() token.Position {
	if len(x.Decorators) > 0 {
		return x.Decorators[0].Pos()
	}
	return x.Class
}

func (x *Class) End() token.Position { return x.Rbrace.Advance(1) }

func (x *Class) String() string {
	var out bytes.Buffer
	x.write(&out, 0)
	return out.String()
}

func (x *Class) write(out *bytes.Buffer, depth int) {
	writeDecorators(out, x.Decorators, depth)
	out.WriteString("class ")
	out.WriteString(x.Name.Name)
	out.WriteString(" ")
	stmts := make([]Node, 0, len(x.Methods))
	for _, m := range x.Methods {
		stmts = append(stmts, m)
	}
	writeBody(out, stmts, depth)
}

func indent(out *bytes.Buffer, depth int) {
	out.WriteString(strings.Repeat("\t", depth))
}

// writeStmt writes a statement whose first line is already indented.
func writeStmt(out *bytes.Buffer, stmt Node, depth int) {
	switch s := stmt.(type) {
	case *Func:
		s.write(out, depth)
	case *Class:
		s.write(out, depth)
	default:
		out.WriteString(stmt.String())
	}
}

func writeBody(out *bytes.Buffer, stmts []Node, depth int) {
	if len(stmts) == 0 {
		out.WriteString("{}")
		return
	}
	out.WriteString("{\n")
	for _, stmt := range stmts {
		indent(out, depth+1)
		writeStmt(out, stmt, depth+1)
		out.WriteString("\n")
	}
	indent(out, depth)
	out.WriteString("}")
}

func writeDecorators(out *bytes.Buffer, decorators []*Decorator, depth int) {
	for _, d := range decorators {
		out.WriteString(d.String())
		out.WriteString("\n")
		indent(out, depth)
	}
}
