package pipes

import "github.com/deepnoodle-ai/superpipe/ast"

// Substituter replaces placeholder identifiers in the right-hand side of a
// pipe link with the left-hand value. The left-hand value is inserted by
// reference at every placeholder site; it is never copied or modified.
type Substituter struct {
	placeholder string
	replaced    int
}

// NewSubstituter returns a Substituter for the given placeholder name.
func NewSubstituter(placeholder string) *Substituter {
	if placeholder == "" {
		placeholder = Placeholder
	}
	return &Substituter{placeholder: placeholder}
}

// Replaced returns the number of placeholder sites replaced so far.
func (s *Substituter) Replaced() int {
	return s.replaced
}

// SubstituteAtom substitutes left into a single expression slot. When atom is
// the placeholder, left is returned with true. A spread is unwrapped, its
// operand substituted, and the spread returned with the operand's result.
// Any other expression is searched for nested placeholders, but is returned
// as-is with false: it is not itself a substitution site.
func (s *Substituter) SubstituteAtom(left, atom ast.Expr) (ast.Expr, bool) {
	switch a := atom.(type) {
	case nil:
		return nil, false
	case *ast.Ident:
		if a.Name == s.placeholder {
			s.replaced++
			return left, true
		}
	case *ast.Spread:
		var ok bool
		a.X, ok = s.SubstituteAtom(left, a.X)
		return a, ok
	}
	s.SubstituteInto(left, atom)
	return atom, false
}

// SubstituteInto substitutes left into the structural slots of right and
// reports whether right counts as handled. Handled right-hand sides become
// the result of the link as they are; unhandled ones are called with left.
func (s *Substituter) SubstituteInto(left, right ast.Expr) bool {
	switch r := right.(type) {
	case *ast.GetAttr:
		r.X, _ = s.SubstituteAtom(left, r.X)
		return true
	case *ast.Index:
		r.X, _ = s.SubstituteAtom(left, r.X)
		return true
	case *ast.Slice:
		r.X, _ = s.SubstituteAtom(left, r.X)
		return true
	case *ast.Infix:
		r.X, _ = s.SubstituteAtom(left, r.X)
		r.Y, _ = s.SubstituteAtom(left, r.Y)
		return true
	case *ast.Call:
		// A placeholder in the receiver binds the value there and the
		// arguments are left alone.
		if attr, ok := r.Fun.(*ast.GetAttr); ok {
			before := s.replaced
			attr.X, _ = s.SubstituteAtom(left, attr.X)
			if s.replaced > before {
				return true
			}
		}
		return s.substituteArgs(left, r)
	case *ast.List:
		s.substituteAll(left, r.Items)
		return true
	case *ast.Tuple:
		s.substituteAll(left, r.Items)
		return true
	case *ast.Set:
		s.substituteAll(left, r.Items)
		return true
	case *ast.Map:
		for i := range r.Items {
			r.Items[i].Key, _ = s.SubstituteAtom(left, r.Items[i].Key)
			r.Items[i].Value, _ = s.SubstituteAtom(left, r.Items[i].Value)
		}
		return true
	case *ast.String:
		if r.Template == nil {
			return false
		}
		s.substituteAll(left, r.Exprs)
		return true
	case *ast.Comprehension:
		for _, gen := range r.Generators {
			gen.Iter, _ = s.SubstituteAtom(left, gen.Iter)
		}
		return true
	}
	return false
}

func (s *Substituter) substituteArgs(left ast.Expr, call *ast.Call) bool {
	found := false
	for i, arg := range call.Args {
		var ok bool
		call.Args[i], ok = s.SubstituteAtom(left, arg)
		found = found || ok
	}
	for _, kw := range call.Kwargs {
		var ok bool
		kw.Value, ok = s.SubstituteAtom(left, kw.Value)
		found = found || ok
	}
	return found
}

func (s *Substituter) substituteAll(left ast.Expr, exprs []ast.Expr) {
	for i, e := range exprs {
		exprs[i], _ = s.SubstituteAtom(left, e)
	}
}
