package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/scriptroom/internal/config"
	"github.com/ShayCichocki/scriptroom/internal/state"
)

var (
	sessionsLimit   int
	sessionsCleanup bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List journaled production sessions",
	Long: `List the sessions recorded in the journal, newest first.

With --cleanup:
  - Marks sessions left active by a crashed process as interrupted
  - Deletes sessions older than state.retain_days (when set)`,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Maximum number of sessions to list (0 for all)")
	sessionsCmd.Flags().BoolVar(&sessionsCleanup, "cleanup", false, "Flag interrupted sessions and purge old ones")
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err := os.Stat(journalPath(cfg)); os.IsNotExist(err) {
		fmt.Println("No sessions yet. Run 'scriptroom run <topic>' to start.")
		return nil
	}

	db, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if sessionsCleanup {
		if err := cleanupSessions(db, cfg.State.RetainDays); err != nil {
			return err
		}
	}

	sessions, err := db.ListSessions(sessionsLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions yet. Run 'scriptroom run <topic>' to start.")
		return nil
	}
	displaySessions(sessions)
	return nil
}

// cleanupSessions flags abandoned sessions and purges expired ones.
func cleanupSessions(db *state.DB, retainDays int) error {
	n, err := db.MarkInterrupted()
	if err != nil {
		return err
	}
	printStatus(os.Stdout, "✓", fmt.Sprintf("Marked %d abandoned session(s) as interrupted", n), color.FgGreen)

	if retainDays <= 0 {
		return nil
	}
	n, err = db.PurgeOldSessions(retention(retainDays))
	if err != nil {
		return err
	}
	printStatus(os.Stdout, "✓", fmt.Sprintf("Purged %d session(s) older than %d days", n, retainDays), color.FgGreen)
	return nil
}

// displaySessions prints sessions as a table.
func displaySessions(sessions []state.Session) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPHASE\tSTARTED\tTOPIC")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.ID,
			statusColor(s.Status).Sprintf("%-11s", s.Status),
			s.Phase,
			formatAge(time.Since(s.StartedAt)),
			truncateTopic(s.Topic, 50))
	}
	w.Flush()
}

func statusColor(s state.SessionStatus) *color.Color {
	switch s {
	case state.SessionCompleted:
		return color.New(color.FgGreen)
	case state.SessionActive:
		return color.New(color.FgBlue)
	case state.SessionStopped, state.SessionInterrupted:
		return color.New(color.FgYellow)
	default:
		return color.New(color.Reset)
	}
}

// formatAge renders an elapsed time as "5m ago", "3h ago" or "2d ago".
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func truncateTopic(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
