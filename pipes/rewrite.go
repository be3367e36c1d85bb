package pipes

import (
	"github.com/deepnoodle-ai/superpipe/ast"
	"github.com/rs/zerolog"
)

// Rewriter reduces every pipe chain under a node. Chains are reduced bottom
// up, so the left operand of a link is fully reduced before the link itself,
// and pipes nested inside a right-hand side are reduced before the enclosing
// link substitutes into it.
//
// A Rewriter is not safe for concurrent use. Use one per tree.
type Rewriter struct {
	sub    *Substituter
	logger zerolog.Logger
	links  int

	// onReduce, if set, is called with each link and its replacement.
	onReduce func(pipe *ast.Infix, result ast.Expr)
}

// NewRewriter returns a Rewriter. WithPlaceholder and WithLogger apply.
func NewRewriter(opts ...Option) *Rewriter {
	cfg := newConfig(opts)
	return newRewriter(cfg)
}

func newRewriter(cfg *config) *Rewriter {
	return &Rewriter{
		sub:    NewSubstituter(cfg.placeholder),
		logger: cfg.logger,
	}
}

// Links returns the number of pipe links reduced so far.
func (r *Rewriter) Links() int {
	return r.links
}

// Rewrite reduces every pipe chain below node in place. If node is itself a
// pipe expression use RewriteExpr, which can replace the root.
func (r *Rewriter) Rewrite(node ast.Node) {
	ast.Apply(node, r.reduce)
}

// RewriteExpr reduces every pipe chain in expr and returns the expression
// that replaces expr.
func (r *Rewriter) RewriteExpr(expr ast.Expr) ast.Expr {
	if expr == nil {
		return nil
	}
	ast.Apply(expr, r.reduce)
	return r.reduce(expr)
}

// Transform rewrites the whole program. It never fails.
func (r *Rewriter) Transform(program *ast.Program) (*ast.Program, error) {
	r.Rewrite(program)
	return program, nil
}

func (r *Rewriter) reduce(expr ast.Expr) ast.Expr {
	infix, ok := expr.(*ast.Infix)
	if !ok {
		return expr
	}
	dir, ok := DirectionOf(infix.Op)
	if !ok {
		return expr
	}
	event := r.logger.Debug()
	var before string
	if event.Enabled() {
		before = infix.String()
	}
	result := r.sub.Reduce(dir, infix.X, infix.Y)
	r.links++
	if r.onReduce != nil {
		r.onReduce(infix, result)
	}
	if event.Enabled() {
		pos := infix.OpPos
		event.
			Str("file", pos.File).
			Int("line", pos.LineNumber()).
			Int("column", pos.ColumnNumber()).
			Str("from", before).
			Str("to", result.String()).
			Msg("reduced pipe")
	}
	return result
}
