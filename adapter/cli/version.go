package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build metadata, set with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		commit, built := buildMetadata()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "overland %s (%s)\n", Version, runtime.Version())
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", built)
	},
}

// buildMetadata falls back to the VCS stamp the Go toolchain embeds when
// ldflags were not set.
func buildMetadata() (commit, built string) {
	commit, built = Commit, BuildDate
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "":
				commit = s.Value
			case s.Key == "vcs.time" && built == "":
				built = s.Value
			}
		}
	}
	if commit == "" {
		commit = "none"
	}
	if built == "" {
		built = "unknown"
	}
	return commit, built
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
