package main

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/superpipe"
	perrors "github.com/deepnoodle-ai/superpipe/errors"
	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Report rewrite errors without printing output",
		Long: `Check rewrites its input without printing the result and reports
parse errors, activation errors, failed re-parses and placeholders that are
not inside any pipe.`,
		RunE: a.runCheck,
	}
	flags := cmd.Flags()
	addInputFlags(flags, "code to check")
	flags.StringP("output", "o", "text", "output format: text or json")
	flags.IntP("jobs", "j", 0, "number of files checked concurrently (default GOMAXPROCS)")
	addRewriteFlags(flags)
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(a.v.GetString("output"))
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown output format: %s", format)
	}
	opts := append(a.options(), superpipe.WithStrict(true))

	var err error
	if flagChanged(cmd, "code") || flagChanged(cmd, "stdin") || len(args) == 0 {
		in, inErr := readInput(cmd, args)
		if inErr != nil {
			return inErr
		}
		_, err = superpipe.Rewrite(cmd.Context(), in.code, append(opts, superpipe.WithFilename(in.name))...)
	} else {
		_, err = superpipe.RewriteFiles(cmd.Context(), args, opts...)
	}

	if format == "json" {
		errs := perrors.Flatten(err)
		if errs == nil {
			errs = []*perrors.FormattedError{}
		}
		if jerr := writeJSON(cmd.OutOrStdout(), errs); jerr != nil {
			return jerr
		}
		if err != nil {
			return &exitError{code: 1}
		}
		return nil
	}
	if err != nil {
		return report(cmd, err)
	}
	return nil
}
