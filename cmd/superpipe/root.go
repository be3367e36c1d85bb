package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/deepnoodle-ai/superpipe"
	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configName = ".superpipe.yaml"

var profileModes = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"trace":     profile.TraceProfile,
}

// app holds the state shared by all commands of one invocation.
type app struct {
	root    *cobra.Command
	v       *viper.Viper
	logger  zerolog.Logger
	profile interface{ Stop() }
}

func newApp() *app {
	a := &app{v: viper.New(), logger: zerolog.Nop()}
	root := &cobra.Command{
		Use:   "superpipe",
		Short: "Rewrite >> and << pipe chains into plain function calls",
		Long: `Superpipe rewrites pipe chains such as "x >> f >> g(1)" into the
plain calls "g(f(x), 1)". Only functions and classes decorated with @pipes
are rewritten unless --all is given.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetVersionTemplate(fmt.Sprintf("superpipe %s (commit %s, built %s)\n", version, commit, date))

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/"+configName+")")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "warn", "log level: trace, debug, info, warn or error")
	flags.String("profile", "", "capture a profile: "+strings.Join(slices.Sorted(maps.Keys(profileModes)), ", "))
	flags.String("profile-path", ".", "directory that receives profile output")

	root.AddCommand(
		newRewriteCmd(a),
		newCheckCmd(a),
		newASTCmd(a),
		newVersionCmd(),
	)
	a.root = root
	return a
}

// run executes the command line and releases anything setup acquired.
func (a *app) run(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	defer a.close()
	return a.root.ExecuteContext(ctx)
}

func (a *app) close() {
	if a.profile != nil {
		a.profile.Stop()
		a.profile = nil
	}
}

// setup reads configuration and prepares logging before any command runs.
// Values resolve in the order flag, environment, config file, default.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	a.v.SetEnvPrefix("SUPERPIPE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	configFile, err := a.readConfig()
	if err != nil {
		return err
	}

	if a.v.GetBool("no-color") || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level %q", a.v.GetString("log-level"))
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     cmd.ErrOrStderr(),
		NoColor: color.NoColor,
	}).Level(level).With().Timestamp().Logger()
	if configFile != "" {
		a.logger.Debug().Str("file", configFile).Msg("loaded config")
	}

	if mode := a.v.GetString("profile"); mode != "" {
		opt, ok := profileModes[mode]
		if !ok {
			return fmt.Errorf("unknown profile mode %q", mode)
		}
		a.profile = profile.Start(opt,
			profile.ProfilePath(a.v.GetString("profile-path")),
			profile.Quiet,
			profile.NoShutdownHook,
		)
	}
	return nil
}

// readConfig loads the config file, if any, and returns its path. A missing
// default config file is not an error.
func (a *app) readConfig() (string, error) {
	path := a.v.GetString("config")
	explicit := path != ""
	if explicit {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return "", err
		}
		path = expanded
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return "", nil
		}
		path = filepath.Join(home, configName)
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: %w", err)
	}
	a.v.SetConfigFile(path)
	if err := a.v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("config %s: %w", path, err)
	}
	return path, nil
}

// options translates the resolved settings into rewrite options.
func (a *app) options() []superpipe.Option {
	opts := []superpipe.Option{
		superpipe.WithDecorator(a.v.GetString("decorator")),
		superpipe.WithPlaceholder(a.v.GetString("placeholder")),
		superpipe.WithGlobal(a.v.GetBool("all")),
		superpipe.WithStrict(a.v.GetBool("strict")),
		superpipe.WithLogger(a.logger),
	}
	if a.v.GetBool("no-reentry-check") {
		opts = append(opts, superpipe.WithoutReentryCheck())
	}
	if jobs := a.v.GetInt("jobs"); jobs > 0 {
		opts = append(opts, superpipe.WithConcurrency(jobs))
	}
	if depth := a.v.GetInt("max-depth"); depth > 0 {
		opts = append(opts, superpipe.WithMaxDepth(depth))
	}
	return opts
}
