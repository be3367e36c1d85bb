package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	perrors "github.com/deepnoodle-ai/superpipe/errors"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	codeSource  = "<code>"
	stdinSource = "<stdin>"
)

// input is source code together with the name used in error messages.
type input struct {
	name string
	code string
}

func addInputFlags(flags *pflag.FlagSet, what string) {
	flags.StringP("code", "c", "", what)
	flags.Bool("stdin", false, "read code from stdin")
}

func addRewriteFlags(flags *pflag.FlagSet) {
	flags.Bool("all", false, "rewrite every pipe chain, not only those in decorated definitions")
	flags.String("decorator", "pipes", "name of the activating decorator")
	flags.String("placeholder", "_", "name of the placeholder")
	flags.Int("max-depth", 0, "maximum expression nesting depth (0 uses the parser default)")
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// readInput determines the code to operate on. There are three
// possibilities: --code, --stdin or a path as args[0].
func readInput(cmd *cobra.Command, args []string) (input, error) {
	codeSet := flagChanged(cmd, "code")
	stdinSet := flagChanged(cmd, "stdin")
	pathSupplied := len(args) > 0
	if (pathSupplied && (codeSet || stdinSet)) || (codeSet && stdinSet) {
		return input{}, errors.New("multiple input sources specified")
	}
	switch {
	case stdinSet:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return input{}, err
		}
		return input{name: stdinSource, code: string(data)}, nil
	case pathSupplied:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return input{}, err
		}
		return input{name: args[0], code: string(data)}, nil
	case codeSet:
		code, _ := cmd.Flags().GetString("code")
		return input{name: codeSource, code: code}, nil
	}
	return input{}, errors.New("no input (pass a file, --code or --stdin)")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func useColor(w io.Writer) bool {
	return !color.NoColor && isTerminal(w)
}

// report writes err to stderr with source context and returns an error
// that only carries the exit status.
func report(cmd *cobra.Command, err error) error {
	w := cmd.ErrOrStderr()
	fmt.Fprint(w, perrors.NewFormatter(useColor(w)).FormatError(err))
	return &exitError{code: 1}
}

func writeJSON(w io.Writer, value any) error {
	var data []byte
	var err error
	if useColor(w) {
		data, err = prettyjson.Marshal(value)
	} else {
		data, err = json.MarshalIndent(value, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeFile replaces the contents of path, keeping its permissions.
func writeFile(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), info.Mode().Perm())
}
