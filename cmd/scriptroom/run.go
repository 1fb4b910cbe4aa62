package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/ShayCichocki/scriptroom/internal/config"
	"github.com/ShayCichocki/scriptroom/internal/orchestrator"
	"github.com/ShayCichocki/scriptroom/internal/roles"
	"github.com/ShayCichocki/scriptroom/internal/session"
	"github.com/ShayCichocki/scriptroom/internal/signals"
	"github.com/ShayCichocki/scriptroom/internal/state"
	"github.com/ShayCichocki/scriptroom/internal/telemetry"
	"github.com/ShayCichocki/scriptroom/internal/tui"
)

var (
	runBrief     string
	runSessionID string
	runTUI       bool
	runNoJournal bool
	runVerbose   bool
)

var runCmd = &cobra.Command{
	Use:   "run <topic>",
	Short: "Produce a video script on a topic",
	Long: `Start a production session on a topic.

The producer briefs the team, asks you questions when it needs a decision
(the target length first of all) and hands the script through research,
writing, review and voiceover. Answer questions at the prompt.

Prompt commands:
  /state   Print the session state as JSON
  /stop    Stop the session
  /reset   Clear the session and start over with a new topic
  /quit    Leave without stopping the journal record

Use --tui for a full-screen studio view.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVar(&runBrief, "brief", "", "Extra direction for the producer (audience, tone, length)")
	runCmd.Flags().StringVar(&runSessionID, "session", "", "Session ID (default: a new UUID)")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Run in the full-screen studio view")
	runCmd.Flags().BoolVar(&runNoJournal, "no-journal", false, "Do not record the session in the journal")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Show when each team member starts thinking")
}

func runSession(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(strings.Join(args, " "))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if debugLogs {
		cfg.Logging.Debug = true
	}
	// The studio owns the terminal; logs go to a file instead.
	if runTUI && cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(filepath.Dir(journalPath(cfg)), "logs", "scriptroom.log")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx, closeLog, err := telemetry.SetupLogging(ctx, cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer closeLog()

	set, err := roles.Load(cfg.Roles.File)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	client, err := createClient(cfg, "")
	if err != nil {
		return err
	}

	registry := session.NewRegistry(sessionFactory(ctx, cfg, client, set, telemetry.NewMetrics(nil)))
	defer registry.StopAll()

	id := runSessionID
	if id == "" {
		id = uuid.New().String()
	}
	o, err := registry.GetOrCreate(id, "")
	if err != nil {
		return err
	}

	var db *state.DB
	if !runNoJournal {
		if db, err = openJournal(cfg); err != nil {
			return err
		}
		defer db.Close()
		if err := db.CreateSession(&state.Session{ID: id, Topic: topic}); err != nil {
			return err
		}
		unsubscribe := o.Bus().Subscribe(state.NewJournal(db, id))
		defer unsubscribe()
	}

	watcher, err := signals.Watch(ctx, signalsDir(cfg), func(sid string) {
		if sid == "" {
			registry.StopAll()
			return
		}
		if err := registry.Stop(sid); err != nil {
			log.Debugf(ctx, "stop signal for %s ignored: %v", sid, err)
		}
	})
	if err != nil {
		log.Warn(ctx, log.KV{K: "msg", V: "stop signals unavailable"}, log.KV{K: "err", V: err.Error()})
	} else {
		defer watcher.Close()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopping session...")
			registry.StopAll()
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Info(ctx, log.KV{K: "msg", V: "session created"},
		log.KV{K: "session", V: id},
		log.KV{K: "topic", V: topic},
		log.KV{K: "model", V: string(client.Model())})

	var st orchestrator.State
	if runTUI {
		st, err = runStudio(ctx, o, topic, runBrief)
	} else {
		fmt.Printf("Session %s\n", color.New(color.Faint).Sprint(id))
		onReset := func() {}
		if db != nil {
			onReset = func() {
				if err := db.ResetSession(id); err != nil {
					log.Error(ctx, err, log.KV{K: "msg", V: "journal reset failed"})
				}
			}
		}
		st, err = runPlain(ctx, o, topic, runBrief, os.Stdin, os.Stdout, onReset)
	}

	if db != nil {
		finishJournal(ctx, db, id, st)
	}
	if runTUI {
		printStop(os.Stdout, st)
	}
	printFinal(os.Stdout, st)
	in, out := client.Tracker().Total()
	fmt.Printf("\nTokens: %d in, %d out across %d calls (about $%.2f)\n", in, out, client.Tracker().Calls(), client.Tracker().Cost())
	return err
}

// runPlain drives a session from line-oriented input, printing the
// conversation to out as it happens.
func runPlain(ctx context.Context, o *orchestrator.Orchestrator, topic, brief string, in io.Reader, out io.Writer, onReset func()) (orchestrator.State, error) {
	unsubscribe := o.Bus().Subscribe(newRenderer(out, runVerbose))
	defer unsubscribe()

	lines := readLines(ctx, in)
	st, err := o.Start(ctx, topic, brief)
	ran := true
	for {
		if err != nil {
			return st, err
		}
		if ran {
			printStop(out, st)
			ran = false
		}
		if (st.Started() && !st.Running) || ctx.Err() != nil {
			return st, nil
		}

		if st.Started() {
			fmt.Fprint(out, "> ")
		} else {
			fmt.Fprint(out, "New topic> ")
		}
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return o.State(), nil
		case line, ok = <-lines:
		}
		if !ok {
			return o.State(), nil
		}

		switch line = strings.TrimSpace(line); line {
		case "":
			continue
		case "/quit", "/exit":
			return o.State(), nil
		case "/state":
			data, _ := json.MarshalIndent(o.State(), "", "  ")
			fmt.Fprintln(out, string(data))
			continue
		case "/stop":
			o.Stop()
			st, ran = o.State(), true
			continue
		case "/reset":
			o.Reset()
			onReset()
			st = o.State()
			printStatus(out, "✓", "Session reset.", color.FgGreen)
			continue
		}

		if st.Started() {
			st, err = o.Respond(ctx, line)
		} else {
			st, err = o.Start(ctx, line, "")
		}
		ran = true
	}
}

// readLines delivers input lines until EOF or ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// runStudio drives a session from the full-screen studio.
func runStudio(ctx context.Context, o *orchestrator.Orchestrator, topic, brief string) (orchestrator.State, error) {
	program, _ := tui.NewStudioProgram(ctx, o, topic, brief)
	unsubscribe := o.Bus().Subscribe(tui.Forward(program))
	_, err := program.Run()
	unsubscribe()

	// Leaving the studio ends the session.
	o.Stop()
	if err != nil {
		return o.State(), fmt.Errorf("studio: %w", err)
	}
	return o.State(), nil
}

// journalPath returns the configured journal database path.
func journalPath(cfg *config.Config) string {
	if cfg.State.DBPath != "" {
		return cfg.State.DBPath
	}
	return state.DefaultDBPath()
}

// signalsDir returns the configured stop-signal directory.
func signalsDir(cfg *config.Config) string {
	if cfg.State.SignalsDir != "" {
		return cfg.State.SignalsDir
	}
	return signals.DefaultDir()
}

// openJournal opens and migrates the session journal.
func openJournal(cfg *config.Config) (*state.DB, error) {
	db, err := state.Open(journalPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return db, nil
}

// finishJournal records how the session ended. Completed sessions are
// recorded by the journal observer itself.
func finishJournal(ctx context.Context, db *state.DB, id string, st orchestrator.State) {
	var status state.SessionStatus
	switch {
	case st.LastStop == orchestrator.StopReasonStopped:
		status = state.SessionStopped
	case st.Running:
		status = state.SessionInterrupted
	default:
		return
	}
	if err := db.UpdateStatus(id, status); err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "journal update failed"}, log.KV{K: "session", V: id})
	}
}

// retention converts a retain_days setting into a duration.
func retention(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
