package pipes

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/superpipe/ast"
	perrors "github.com/deepnoodle-ai/superpipe/errors"
	"github.com/hashicorp/go-multierror"
)

// Activator finds function and class definitions carrying the activating
// decorator, removes the decorator and rewrites the pipe chains inside them.
// With WithGlobal every chain in the program is rewritten.
//
// Definitions are checked before anything is modified: if any use of the
// decorator is invalid the program is left untouched and all problems are
// returned together.
type Activator struct {
	cfg    *config
	lines  []string
	splice *splicer
}

// NewActivator returns an Activator configured by opts.
func NewActivator(opts ...Option) *Activator {
	cfg := newConfig(opts)
	a := &Activator{cfg: cfg}
	if cfg.source != "" {
		a.lines = strings.Split(cfg.source, "\n")
	}
	return a
}

// target is a definition selected for rewriting.
type target struct {
	node       ast.Node
	decorators *[]*ast.Decorator
	index      int
}

func (t target) decorator() *ast.Decorator {
	return (*t.decorators)[t.index]
}

func (t target) strip() {
	ds := *t.decorators
	*t.decorators = append(ds[:t.index:t.index], ds[t.index+1:]...)
}

// Transform implements syntax.Transformer.
func (a *Activator) Transform(program *ast.Program) (*ast.Program, error) {
	if err := a.Activate(program); err != nil {
		return nil, err
	}
	return program, nil
}

// Activate rewrites program in place. The returned error, if any, is a
// *multierror.Error holding one *ActivationError per problem.
func (a *Activator) Activate(program *ast.Program) error {
	a.splice = nil
	targets, err := a.collect(program)
	if err != nil {
		return err
	}
	rewriter := newRewriter(a.cfg)
	if a.cfg.source != "" {
		a.splice = newSplicer(a.cfg.source, program)
		rewriter.onReduce = a.splice.reduced
	}
	for _, t := range targets {
		if a.splice != nil {
			a.splice.removeDecorator(t.decorator())
		}
		t.strip()
	}
	if a.cfg.global {
		rewriter.Rewrite(program)
	} else {
		// Nested targets are already rewritten by the time they come up,
		// which leaves nothing for the rewriter to do.
		for _, t := range targets {
			rewriter.Rewrite(t.node)
		}
	}
	a.cfg.logger.Debug().
		Int("definitions", len(targets)).
		Int("links", rewriter.Links()).
		Bool("global", a.cfg.global).
		Msg("activated pipes")
	return nil
}

// Output returns the source given to WithSource with the changes made by
// the last successful Activate applied. Only rewritten chains and removed
// decorators differ from the source, and every line keeps its number
// unless a replacement needs more lines than the text it replaced.
// Without a source, or before Activate succeeds, Output returns "".
func (a *Activator) Output() string {
	if a.splice == nil {
		return ""
	}
	return a.splice.output()
}

func (a *Activator) collect(program *ast.Program) ([]target, error) {
	var (
		targets    []target
		result     *multierror.Error
		decorators = map[ast.Expr]bool{}
	)
	ast.Inspect(program, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.Func:
			if t, err := a.check(n, &n.Decorators); err != nil {
				result = multierror.Append(result, err)
			} else if t != nil {
				targets = append(targets, *t)
			}
		case *ast.Class:
			if t, err := a.check(n, &n.Decorators); err != nil {
				result = multierror.Append(result, err)
			} else if t != nil {
				targets = append(targets, *t)
			}
		case *ast.Decorator:
			decorators[n.X] = true
		case *ast.Call:
			if !decorators[n] && a.misused(n) {
				result = multierror.Append(result, a.newError(perrors.E2001, n,
					fmt.Sprintf("%s must be used as a decorator on a function or class definition", a.cfg.decorator),
					fmt.Sprintf("write @%s on the line before the definition", a.cfg.decorator)))
			}
		}
		return true
	})
	if result != nil {
		result.ErrorFormat = formatErrors
	}
	return targets, result.ErrorOrNil()
}

// check returns the target for a decorated definition, nil if the
// definition does not carry the decorator, or an error if the decorator is
// not the innermost one.
func (a *Activator) check(node ast.Node, decorators *[]*ast.Decorator) (*target, error) {
	ds := *decorators
	for i, d := range ds {
		name := calleeName(d.X)
		if name != a.cfg.decorator {
			a.warnNearMiss(d, name)
			continue
		}
		if i != len(ds)-1 {
			inner := ds[len(ds)-1]
			return nil, a.newError(perrors.E2002, d,
				fmt.Sprintf("@%s would be applied to the result of %s instead of the definition",
					a.cfg.decorator, inner.String()),
				fmt.Sprintf("move @%s so that it is the last decorator", a.cfg.decorator))
		}
		return &target{node: node, decorators: decorators, index: i}, nil
	}
	return nil, nil
}

func (a *Activator) warnNearMiss(d *ast.Decorator, name string) {
	suggestions := perrors.SuggestSimilar(name, []string{a.cfg.decorator})
	if len(suggestions) == 0 {
		return
	}
	pos := d.Pos()
	a.cfg.logger.Warn().
		Str("file", pos.File).
		Int("line", pos.LineNumber()).
		Str("decorator", name).
		Msgf("unknown decorator @%s; did you mean @%s?", name, suggestions[0].Value)
}

func (a *Activator) newError(code perrors.ErrorCode, node ast.Node, msg, hint string) *ActivationError {
	err := &ActivationError{
		Code:    code,
		Message: msg,
		Hint:    hint,
		Start:   node.Pos(),
		End:     node.End(),
	}
	if line := err.Start.Line; line >= 0 && line < len(a.lines) {
		err.SourceLine = a.lines[line]
	}
	return err
}

// misused reports whether call applies the decorator by hand, as in
// "pipes(f)" or "lib.pipes(f)". Method calls that merely share the name,
// such as "conn.pipes()", are not uses of the decorator.
func (a *Activator) misused(call *ast.Call) bool {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		return fun.Name == a.cfg.decorator
	case *ast.GetAttr:
		if _, pkg := fun.X.(*ast.Ident); !pkg || fun.Attr.Name != a.cfg.decorator {
			return false
		}
		if len(call.Args) != 1 || len(call.Kwargs) != 0 {
			return false
		}
		switch call.Args[0].(type) {
		case *ast.Func, *ast.Ident:
			return true
		}
	}
	return false
}

// calleeName returns the last name in a decorator or callee expression:
// "pipes" for pipes, pipes(), lib.pipes and lib.pipes().
func calleeName(x ast.Expr) string {
	switch e := x.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.GetAttr:
		return e.Attr.Name
	case *ast.Call:
		return calleeName(e.Fun)
	}
	return ""
}
