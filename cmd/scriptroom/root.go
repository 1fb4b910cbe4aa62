package main

import (
	"os"

	"github.com/spf13/cobra"
)

var debugLogs bool

var rootCmd = &cobra.Command{
	Use:   "scriptroom",
	Short: "A team of AI agents that produces short video scripts",
	Long: `Scriptroom runs a small production team of AI agents (a producer,
researcher, writer, critic, fact checker, creative and voiceover artist)
that turns a topic into a timed video script and a narrated voiceover.

The producer asks you questions along the way; answer them at the prompt.

Examples:
  scriptroom run "How tides work" --brief "for ten year olds, 2 minutes"
  scriptroom run "The history of tea" --tui
  scriptroom sessions
  scriptroom transcript <session-id>`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "Enable debug logs")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(transcriptCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
