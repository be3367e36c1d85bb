package pipes

import "github.com/rs/zerolog"

type config struct {
	placeholder string
	decorator   string
	global      bool
	source      string
	logger      zerolog.Logger
}

func newConfig(opts []Option) *config {
	cfg := &config{
		placeholder: Placeholder,
		decorator:   Decorator,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option configures a Rewriter or an Activator.
type Option func(*config)

// WithPlaceholder sets the placeholder identifier. Defaults to "_".
func WithPlaceholder(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.placeholder = name
		}
	}
}

// WithDecorator sets the name of the activating decorator. Defaults to
// "pipes". Qualified uses such as "@lib.pipes" match on the last name.
func WithDecorator(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.decorator = name
		}
	}
}

// WithGlobal rewrites every pipe chain in a program, whether or not it sits
// inside a decorated definition.
func WithGlobal(global bool) Option {
	return func(cfg *config) {
		cfg.global = global
	}
}

// WithSource supplies the program's source text, which is quoted in
// activation errors and which Activator.Output splices the rewritten chains
// into.
func WithSource(source string) Option {
	return func(cfg *config) {
		cfg.source = source
	}
}

// WithLogger sets the logger. Reduced links are logged at debug level and
// suspicious decorators at warn level.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}
