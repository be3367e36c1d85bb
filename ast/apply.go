package ast

// Apply traverses the tree rooted at node bottom-up and replaces every
// expression with the result of calling post on it. Children are always
// replaced before their parent is passed to post, so post sees a node whose
// subexpressions have already been rewritten. Statements are traversed but
// only expressions are handed to post. The tree is modified in place.
func Apply(node Node, post func(Expr) Expr) {
	x := func(e Expr) Expr {
		if e == nil {
			return nil
		}
		Apply(e, post)
		return post(e)
	}
	xs := func(exprs []Expr) {
		for i, e := range exprs {
			exprs[i] = x(e)
		}
	}
	stmts := func(nodes []Node) {
		for i, n := range nodes {
			if e, ok := n.(Expr); ok {
				nodes[i] = x(e)
			} else {
				Apply(n, post)
			}
		}
	}

	switch n := node.(type) {
	case *Program:
		stmts(n.Stmts)
	case *Block:
		stmts(n.Stmts)
	case *Var:
		n.Value = x(n.Value)
	case *Assign:
		n.Target = x(n.Target)
		n.Value = x(n.Value)
	case *Return:
		n.Value = x(n.Value)
	case *Decorator:
		n.X = x(n.X)
	case *Class:
		for _, d := range n.Decorators {
			Apply(d, post)
		}
		for _, m := range n.Methods {
			Apply(m, post)
		}
	case *Prefix:
		n.X = x(n.X)
	case *Spread:
		n.X = x(n.X)
	case *Infix:
		n.X = x(n.X)
		n.Y = x(n.Y)
	case *Call:
		n.Fun = x(n.Fun)
		xs(n.Args)
		for _, kw := range n.Kwargs {
			kw.Value = x(kw.Value)
		}
	case *GetAttr:
		n.X = x(n.X)
	case *Index:
		n.X = x(n.X)
		n.Index = x(n.Index)
	case *Slice:
		n.X = x(n.X)
		n.Low = x(n.Low)
		n.High = x(n.High)
	case *Comprehension:
		n.Elt = x(n.Elt)
		n.Key = x(n.Key)
		n.Value = x(n.Value)
		for _, gen := range n.Generators {
			gen.Iter = x(gen.Iter)
			xs(gen.Ifs)
		}
	case *String:
		xs(n.Exprs)
	case *List:
		xs(n.Items)
	case *Tuple:
		xs(n.Items)
	case *Set:
		xs(n.Items)
	case *Map:
		for i := range n.Items {
			n.Items[i].Key = x(n.Items[i].Key)
			n.Items[i].Value = x(n.Items[i].Value)
		}
	case *Func:
		for _, d := range n.Decorators {
			Apply(d, post)
		}
		if n.Body != nil {
			Apply(n.Body, post)
		}
	}
}
