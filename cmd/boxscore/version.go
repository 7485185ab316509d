package main

import (
	"fmt"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "boxscore %s (%s)%s\n", version, runtime.Version(), revision())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// revision returns " commit <short sha>" when the binary carries VCS info.
func revision() string {
	info, ok := rdebug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return " commit " + s.Value[:7]
		}
	}
	return ""
}
