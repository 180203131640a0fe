package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/snapstudy/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		info := version.GetVersionInfo()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", serviceName, version.GetShortVersion())
		if info.BuildTime != "" {
			fmt.Fprintf(out, "built:  %s\n", info.BuildTime)
		}
		fmt.Fprintf(out, "go:     %s\n", info.GoVersion)
	},
}
