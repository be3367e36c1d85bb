// Package syntax defines the extension points for passes that inspect or
// rewrite a parsed program.
package syntax

import "github.com/deepnoodle-ai/superpipe/ast"

// Transformer modifies an AST after parsing.
// Transformers receive ownership of the AST and return a (possibly new) AST.
type Transformer interface {
	// Transform processes the AST and returns the result.
	// The returned AST may be the same instance (modified in place)
	// or a completely new AST.
	Transform(program *ast.Program) (*ast.Program, error)
}

// TransformerFunc is an adapter to use a function as a Transformer.
type TransformerFunc func(*ast.Program) (*ast.Program, error)

// Transform implements the Transformer interface.
func (f TransformerFunc) Transform(p *ast.Program) (*ast.Program, error) {
	return f(p)
}

// Chain returns a Transformer that runs each transformer in order, feeding
// the output of one into the next. Nil transformers are skipped. The first
// error stops the chain.
func Chain(transformers ...Transformer) Transformer {
	return TransformerFunc(func(program *ast.Program) (*ast.Program, error) {
		var err error
		for _, t := range transformers {
			if t == nil {
				continue
			}
			if program, err = t.Transform(program); err != nil {
				return nil, err
			}
		}
		return program, nil
	})
}
