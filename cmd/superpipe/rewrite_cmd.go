package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/superpipe"
	"github.com/spf13/cobra"
)

func newRewriteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rewrite [files...]",
		Aliases: []string{"rw"},
		Short:   "Rewrite pipe chains into plain calls",
		Example: `  superpipe rewrite -c 'x >> f >> g(1)' --all
  superpipe rewrite -w src/*.pipe
  cat main.pipe | superpipe rewrite --stdin`,
		RunE: a.runRewrite,
	}
	flags := cmd.Flags()
	addInputFlags(flags, "code to rewrite")
	flags.BoolP("write", "w", false, "write results back to the source files")
	flags.BoolP("list", "l", false, "list files whose rewritten output differs from the source")
	flags.IntP("jobs", "j", 0, "number of files rewritten concurrently (default GOMAXPROCS)")
	flags.Bool("strict", false, "report placeholders left outside of any pipe")
	flags.Bool("no-reentry-check", false, "skip re-parsing the rewritten output")
	addRewriteFlags(flags)
	return cmd
}

func (a *app) runRewrite(cmd *cobra.Command, args []string) error {
	write := a.v.GetBool("write")
	list := a.v.GetBool("list")
	if flagChanged(cmd, "code") || flagChanged(cmd, "stdin") || len(args) == 0 {
		if write || list {
			return errors.New("--write and --list require file arguments")
		}
		in, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		output, err := superpipe.Rewrite(cmd.Context(), in.code,
			append(a.options(), superpipe.WithFilename(in.name))...)
		if err != nil {
			return report(cmd, err)
		}
		printSource(cmd.OutOrStdout(), output)
		return nil
	}

	results, err := superpipe.RewriteFiles(cmd.Context(), args, a.options()...)
	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Err != nil || r.Path == "" {
			continue
		}
		switch {
		case write:
			if !r.Changed() {
				continue
			}
			if werr := writeFile(r.Path, r.Output); werr != nil {
				return werr
			}
			a.logger.Info().Str("file", r.Path).Msg("rewrote file")
			if list {
				fmt.Fprintln(out, r.Path)
			}
		case list:
			if r.Changed() {
				fmt.Fprintln(out, r.Path)
			}
		default:
			if len(results) > 1 {
				fmt.Fprintf(out, "# %s\n", r.Path)
			}
			printSource(out, r.Output)
		}
	}
	if err != nil {
		return report(cmd, err)
	}
	return nil
}

// printSource writes source, ending it with a newline if it lacks one.
func printSource(w io.Writer, source string) {
	fmt.Fprint(w, source)
	if !strings.HasSuffix(source, "\n") {
		fmt.Fprintln(w)
	}
}
