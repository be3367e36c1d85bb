package pipes

import "github.com/deepnoodle-ai/superpipe/ast"

// Reduce rewrites one pipe link and returns the expression that replaces it.
// The left operand must already be reduced. right is modified in place.
//
// A bare placeholder on the right yields left. If right handles the
// substitution, right is the result. Otherwise an existing call receives
// left as its first (Forward) or last (Backward) positional argument, and
// any other expression is called with left as its only argument. A
// synthesized call is positioned at right.
func (s *Substituter) Reduce(dir Direction, left, right ast.Expr) ast.Expr {
	if ident, ok := right.(*ast.Ident); ok && ident.Name == s.placeholder {
		s.replaced++
		return left
	}
	if s.SubstituteInto(left, right) {
		return right
	}
	if call, ok := right.(*ast.Call); ok {
		if dir == Forward {
			call.Args = append([]ast.Expr{left}, call.Args...)
		} else {
			call.Args = append(call.Args, left)
		}
		return call
	}
	end := right.End()
	return &ast.Call{
		Fun:    right,
		Lparen: end,
		Args:   []ast.Expr{left},
		Rparen: end,
	}
}

// Reduce rewrites one pipe link using the default placeholder.
func Reduce(dir Direction, left, right ast.Expr) ast.Expr {
	return NewSubstituter(Placeholder).Reduce(dir, left, right)
}
