package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bizplan/internal/cli"
	"bizplan/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		info := version.Get()
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		if w := info.Warning(); w != "" {
			fmt.Fprintln(cmd.OutOrStdout(), cli.Muted(w))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
