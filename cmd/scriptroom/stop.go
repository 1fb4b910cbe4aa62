package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/scriptroom/internal/config"
	"github.com/ShayCichocki/scriptroom/internal/signals"
)

var stopCmd = &cobra.Command{
	Use:   "stop [session-id]",
	Short: "Stop a running session from another terminal",
	Long: `Stop a running session by dropping a stop file into the signals
directory. Without a session ID, every running session is stopped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		if err := signals.SendStop(signalsDir(cfg), id); err != nil {
			return fmt.Errorf("send stop signal: %w", err)
		}

		if id == "" {
			printStatus(os.Stdout, "✓", "Stop requested for all sessions", color.FgGreen)
		} else {
			printStatus(os.Stdout, "✓", "Stop requested for session "+id, color.FgGreen)
		}
		return nil
	},
}
