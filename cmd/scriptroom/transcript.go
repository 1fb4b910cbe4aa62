package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/scriptroom/internal/config"
	"github.com/ShayCichocki/scriptroom/internal/state"
	"github.com/ShayCichocki/scriptroom/internal/tui"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

var (
	transcriptJSON   bool
	transcriptScript bool
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript <session-id>",
	Short: "Print the conversation and final script of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscript,
}

func init() {
	transcriptCmd.Flags().BoolVar(&transcriptJSON, "json", false, "Print events as JSON lines")
	transcriptCmd.Flags().BoolVar(&transcriptScript, "script", false, "Print only the final script")
}

// transcriptOutput is the JSON form of a transcript.
type transcriptOutput struct {
	Session *state.Session      `json:"session"`
	Events  []models.Event      `json:"events"`
	Final   *models.FinalScript `json:"final,omitempty"`
	Audio   *models.AudioResult `json:"audio,omitempty"`
}

func runTranscript(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	id := args[0]
	sess, err := db.GetSession(id)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("no session %s in the journal", id)
	}
	final, err := db.GetFinal(id)
	if err != nil {
		return err
	}

	if transcriptScript {
		if final == nil || final.Script == nil {
			return fmt.Errorf("session %s has no approved script", id)
		}
		fmt.Println(strings.TrimSpace(final.Script.Script))
		return nil
	}

	events, err := db.Transcript(id)
	if err != nil {
		return err
	}

	if transcriptJSON {
		out := transcriptOutput{Session: sess, Events: events}
		if final != nil {
			out.Final, out.Audio = final.Script, final.Audio
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("%s %s\n", color.New(color.Bold).Sprint(sess.Topic), color.New(color.Faint).Sprintf("(%s, %s)", sess.Status, sess.Phase))
	for _, ev := range events {
		fmt.Printf("\n%s\n", tui.EventLine(ev))
	}
	if final != nil && final.Script != nil {
		fmt.Printf("\n%s\n\n%s\n", color.New(color.Bold).Sprint("Final script: "+final.Script.Title), strings.TrimSpace(final.Script.Script))
	}
	if final != nil && final.Audio != nil {
		fmt.Printf("\nVoiceover: %s (%.1f seconds)\n", final.Audio.URL, final.Audio.DurationSeconds)
	}
	return nil
}
