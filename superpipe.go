// Package superpipe rewrites ">>" and "<<" pipe chains in source code into
// plain function calls.
//
// Rewriting is driven by the @pipes decorator: only functions and classes
// carrying it are rewritten, unless WithGlobal is used.
//
//	out, err := superpipe.Rewrite(ctx, source, superpipe.WithFilename("main.pipe"))
package superpipe

import (
	"context"
	"runtime"

	"github.com/deepnoodle-ai/superpipe/ast"
	"github.com/deepnoodle-ai/superpipe/parser"
	"github.com/deepnoodle-ai/superpipe/pipes"
	"github.com/deepnoodle-ai/superpipe/syntax"
	"github.com/rs/zerolog"
)

// Option configures a rewrite.
type Option func(*options)

type options struct {
	filename     string
	decorator    string
	placeholder  string
	global       bool
	strict       bool
	reentryCheck bool
	concurrency  int
	maxDepth     int
	logger       zerolog.Logger
}

func collectOptions(opts ...Option) *options {
	o := &options{
		decorator:    pipes.Decorator,
		placeholder:  pipes.Placeholder,
		reentryCheck: true,
		concurrency:  runtime.GOMAXPROCS(0),
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) parserOpts() []parser.Option {
	var opts []parser.Option
	if o.filename != "" {
		opts = append(opts, parser.WithFilename(o.filename))
	}
	if o.maxDepth > 0 {
		opts = append(opts, parser.WithMaxDepth(o.maxDepth))
	}
	return opts
}

func (o *options) pipesOpts(source string) []pipes.Option {
	return []pipes.Option{
		pipes.WithDecorator(o.decorator),
		pipes.WithPlaceholder(o.placeholder),
		pipes.WithGlobal(o.global),
		pipes.WithSource(source),
		pipes.WithLogger(o.logger),
	}
}

// WithFilename sets the filename used in positions and error messages.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithDecorator sets the name of the activating decorator. Defaults to
// "pipes". An empty name is ignored.
func WithDecorator(name string) Option {
	return func(o *options) {
		if name != "" {
			o.decorator = name
		}
	}
}

// WithPlaceholder sets the placeholder identifier. Defaults to "_". An
// empty name is ignored.
func WithPlaceholder(name string) Option {
	return func(o *options) {
		if name != "" {
			o.placeholder = name
		}
	}
}

// WithGlobal rewrites every pipe chain, not only those inside decorated
// definitions.
func WithGlobal(global bool) Option {
	return func(o *options) {
		o.global = global
	}
}

// WithStrict reports placeholders left outside of any pipe after rewriting,
// such as the argument in "v >> _.m(_)".
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithoutReentryCheck skips re-parsing the rewritten source.
func WithoutReentryCheck() Option {
	return func(o *options) {
		o.reentryCheck = false
	}
}

// WithConcurrency limits how many files RewriteFiles processes at once.
// Defaults to GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithMaxDepth sets the parser's maximum expression nesting depth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithLogger sets the logger used by the rewrite.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Parse parses source into a program.
func Parse(ctx context.Context, source string, opts ...Option) (*ast.Program, error) {
	o := collectOptions(opts...)
	return parser.Parse(ctx, source, o.parserOpts()...)
}

// Rewrite parses source, rewrites the pipe chains in every activated
// definition and returns the resulting source. Only the rewritten chains
// and the removed decorators change: comments, blank lines and all other
// text are kept, and lines keep their numbers. The result is re-parsed
// before it is returned; if that fails a *ReentryError is returned.
func Rewrite(ctx context.Context, source string, opts ...Option) (string, error) {
	o := collectOptions(opts...)
	program, err := parser.Parse(ctx, source, o.parserOpts()...)
	if err != nil {
		return "", err
	}
	activator, err := o.transform(program, source)
	if err != nil {
		return "", err
	}
	output := activator.Output()
	if o.reentryCheck {
		if err := o.reenter(ctx, output); err != nil {
			return "", err
		}
	}
	return output, nil
}

// RewriteProgram rewrites an already parsed program in place and returns it.
// Positions of nodes that survive the rewrite are unchanged.
func RewriteProgram(ctx context.Context, program *ast.Program, opts ...Option) (*ast.Program, error) {
	o := collectOptions(opts...)
	if _, err := o.transform(program, ""); err != nil {
		return nil, err
	}
	if o.reentryCheck {
		if err := o.reenter(ctx, program.String()); err != nil {
			return nil, err
		}
	}
	return program, nil
}

func (o *options) transform(program *ast.Program, source string) (*pipes.Activator, error) {
	activator := pipes.NewActivator(o.pipesOpts(source)...)
	transformers := []syntax.Transformer{activator}
	if o.strict {
		stray := syntax.StrayPlaceholders(o.placeholder)
		transformers = append(transformers, syntax.TransformerFunc(
			func(p *ast.Program) (*ast.Program, error) {
				if err := syntax.Validate(p, stray); err != nil {
					return nil, err
				}
				return p, nil
			}))
	}
	if _, err := syntax.Chain(transformers...).Transform(program); err != nil {
		return nil, err
	}
	return activator, nil
}

func (o *options) reenter(ctx context.Context, output string) error {
	if _, err := parser.Parse(ctx, output, o.parserOpts()...); err != nil {
		if ctx.Err() != nil {
			return err
		}
		o.logger.Error().Err(err).Str("file", o.filename).Msg("rewritten source failed to parse")
		return &ReentryError{Filename: o.filename, Output: output, Err: err}
	}
	return nil
}
