package ast

import "iter"

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Stmts {
			Walk(v, stmt)
		}

	// Statements
	case *Block:
		for _, stmt := range n.Stmts {
			Walk(v, stmt)
		}
	case *Var:
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *Assign:
		if n.Target != nil {
			Walk(v, n.Target)
		}
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *Return:
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *Decorator:
		if n.X != nil {
			Walk(v, n.X)
		}
	case *Class:
		for _, d := range n.Decorators {
			Walk(v, d)
		}
		if n.Name != nil {
			Walk(v, n.Name)
		}
		for _, m := range n.Methods {
			Walk(v, m)
		}

	// Expressions
	case *Prefix:
		if n.X != nil {
			Walk(v, n.X)
		}
	case *Spread:
		if n.X != nil {
			Walk(v, n.X)
		}
	case *Infix:
		if n.X != nil {
			Walk(v, n.X)
		}
		if n.Y != nil {
			Walk(v, n.Y)
		}
	case *Call:
		if n.Fun != nil {
			Walk(v, n.Fun)
		}
		for _, arg := range n.Args {
			Walk(v, arg)
		}
		for _, kw := range n.Kwargs {
			Walk(v, kw)
		}
	case *Keyword:
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *GetAttr:
		if n.X != nil {
			Walk(v, n.X)
		}
	case *Index:
		if n.X != nil {
			Walk(v, n.X)
		}
		if n.Index != nil {
			Walk(v, n.Index)
		}
	case *Slice:
		if n.X != nil {
			Walk(v, n.X)
		}
		if n.Low != nil {
			Walk(v, n.Low)
		}
		if n.High != nil {
			Walk(v, n.High)
		}
	case *Comprehension:
		if n.Elt != nil {
			Walk(v, n.Elt)
		}
		if n.Key != nil {
			Walk(v, n.Key)
		}
		if n.Value != nil {
			Walk(v, n.Value)
		}
		for _, gen := range n.Generators {
			Walk(v, gen)
		}
	case *ComprehensionFor:
		for _, t := range n.Targets {
			Walk(v, t)
		}
		if n.Iter != nil {
			Walk(v, n.Iter)
		}
		for _, cond := range n.Ifs {
			Walk(v, cond)
		}

	// Literals
	case *String:
		for _, expr := range n.Exprs {
			Walk(v, expr)
		}
	case *List:
		for _, item := range n.Items {
			Walk(v, item)
		}
	case *Tuple:
		for _, item := range n.Items {
			Walk(v, item)
		}
	case *Set:
		for _, item := range n.Items {
			Walk(v, item)
		}
	case *Map:
		for _, item := range n.Items {
			if item.Key != nil {
				Walk(v, item.Key)
			}
			if item.Value != nil {
				Walk(v, item.Value)
			}
		}
	case *Func:
		for _, d := range n.Decorators {
			Walk(v, d)
		}
		if n.Name != nil {
			Walk(v, n.Name)
		}
		for _, param := range n.Params {
			Walk(v, param)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}
	}
}

// Inspect traverses an AST in depth-first order. It calls f(node) for each
// node; if f returns true, Inspect invokes f recursively for each of the
// non-nil children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all the nodes of the AST rooted at node
// in depth-first preorder.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		stopped := false
		Inspect(root, func(n Node) bool {
			if stopped {
				return false
			}
			if !yield(n) {
				stopped = true
				return false
			}
			return true
		})
	}
}
