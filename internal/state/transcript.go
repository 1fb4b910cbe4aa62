package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// AppendEvent journals one event of a session.
func (db *DB) AppendEvent(sessionID string, seq uint64, ev models.Event) error {
	var payload sql.NullString
	if ev.Payload != nil {
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("encode event payload: %w", err)
		}
		payload = sql.NullString{String: string(data), Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO events (session_id, seq, id, ts, from_role, to_role, kind, body, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sessionID, int64(seq), ev.ID, formatTime(ev.Timestamp), string(ev.From), string(ev.To),
		string(ev.Kind), ev.Body, payload)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Transcript returns the journaled events of a session in append order.
func (db *DB) Transcript(sessionID string) ([]models.Event, error) {
	rows, err := db.Query(`
		SELECT id, ts, from_role, to_role, kind, body, payload
		FROM events WHERE session_id = ? ORDER BY row_id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			ev      models.Event
			ts      string
			payload sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ts, &ev.From, &ev.To, &ev.Kind, &ev.Body, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Timestamp, _ = parseTime(ts)
		if payload.Valid {
			ev.Payload = &models.Payload{}
			if err := json.Unmarshal([]byte(payload.String), ev.Payload); err != nil {
				return nil, fmt.Errorf("decode payload of event %s: %w", ev.ID, err)
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Final is the journaled outcome of a session.
type Final struct {
	SessionID string
	Script    *models.FinalScript
	Audio     *models.AudioResult
	CreatedAt time.Time
}

// SaveFinal stores the accepted final script of a session.
func (db *DB) SaveFinal(sessionID string, f models.FinalScript) error {
	_, err := db.Exec(`
		INSERT INTO finals (session_id, title, description, script, duration_estimate, word_count, estimated_minutes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			script = excluded.script,
			duration_estimate = excluded.duration_estimate,
			word_count = excluded.word_count,
			estimated_minutes = excluded.estimated_minutes
	`, sessionID, f.Title, f.Description, f.Script, f.DurationEstimate, f.WordCount, f.EstimatedMinutes,
		formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save final script: %w", err)
	}
	return nil
}

// SaveAudio attaches the voiceover rendering to a session's final record.
func (db *DB) SaveAudio(sessionID string, a models.AudioResult) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode audio: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO finals (session_id, audio, created_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET audio = excluded.audio
	`, sessionID, string(data), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save audio: %w", err)
	}
	return nil
}

// GetFinal returns the final record of a session, or nil, nil when the
// session has none.
func (db *DB) GetFinal(sessionID string) (*Final, error) {
	row := db.QueryRow(`
		SELECT title, description, script, duration_estimate, word_count, estimated_minutes, audio, created_at
		FROM finals WHERE session_id = ?
	`, sessionID)

	var (
		fs        models.FinalScript
		audio     sql.NullString
		createdAt string
	)
	err := row.Scan(&fs.Title, &fs.Description, &fs.Script, &fs.DurationEstimate,
		&fs.WordCount, &fs.EstimatedMinutes, &audio, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get final: %w", err)
	}

	f := &Final{SessionID: sessionID}
	f.CreatedAt, _ = parseTime(createdAt)
	if fs.Script != "" || fs.Title != "" {
		f.Script = &fs
	}
	if audio.Valid {
		f.Audio = &models.AudioResult{}
		if err := json.Unmarshal([]byte(audio.String), f.Audio); err != nil {
			return nil, fmt.Errorf("decode audio: %w", err)
		}
	}
	return f, nil
}
