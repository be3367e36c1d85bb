package syntax

import (
	"fmt"

	"github.com/deepnoodle-ai/superpipe/ast"
	"github.com/deepnoodle-ai/superpipe/errors"
)

// StrayPlaceholders returns a Validator that reports uses of the placeholder
// identifier that are not inside the right-hand side of any ">>" or "<<"
// expression. Such a placeholder can never be substituted. Identifiers in
// binding positions (parameters, comprehension targets, assignment
// targets) are ignored.
func StrayPlaceholders(placeholder string) Validator {
	return ValidatorFunc(func(program *ast.Program) []ValidationError {
		covered := map[ast.Node]bool{}
		for node := range ast.Preorder(program) {
			switch n := node.(type) {
			case *ast.Infix:
				if n.Op == ">>" || n.Op == "<<" {
					ast.Inspect(n.Y, func(c ast.Node) bool {
						covered[c] = true
						return true
					})
				}
			case *ast.Func:
				for _, param := range n.Params {
					covered[param] = true
				}
			case *ast.ComprehensionFor:
				for _, target := range n.Targets {
					covered[target] = true
				}
			case *ast.Assign:
				covered[n.Target] = true
			}
		}
		var errs []ValidationError
		for node := range ast.Preorder(program) {
			ident, ok := node.(*ast.Ident)
			if !ok || ident.Name != placeholder || covered[ident] {
				continue
			}
			errs = append(errs, ValidationError{
				Code:     errors.E4001,
				Message:  fmt.Sprintf("placeholder %s is not inside a pipe", placeholder),
				Node:     ident,
				Position: ident.Pos(),
			})
		}
		return errs
	})
}
