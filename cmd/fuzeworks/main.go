package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fuzeworks",
	Short: "FuzeWorks - priority event bus with lazily loaded modules",
	Long: `FuzeWorks dispatches named events to listeners in priority order.

Modules are described by manifest files in the modules directory and are
only loaded when an event they listen to is fired for the first time.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"FuzeWorks version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	bindGlobalFlags(rootCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fireCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fuzeworks %s (commit %s, built %s)\n", Version, Commit, BuildTime)
	},
}

// bindGlobalFlags adds the flags every command resolves its config from.
func bindGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file (.yaml, .json or .toml)")
	flags.String("env-file", ".env", "Environment file loaded before FUZEWORKS_* variables are read")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "Log as JSON instead of console output")
	flags.String("modules-dir", "", "Directory holding module manifests")
	flags.String("data-dir", "", "Directory holding the state database")
}
