package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			info := map[string]string{
				"version": version,
				"commit":  commit,
				"date":    date,
				"go":      runtime.Version(),
			}
			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), info)
			case "text":
				fmt.Fprintf(cmd.OutOrStdout(), "superpipe %s\ncommit: %s\ndate: %s\ngo: %s\n",
					version, commit, date, runtime.Version())
				return nil
			}
			return fmt.Errorf("unknown output format: %s", format)
		},
	}
	cmd.Flags().StringP("output", "o", "text", "output format: text or json")
	return cmd
}
