package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// SessionStatus represents the lifecycle status of a journaled session.
type SessionStatus string

const (
	SessionActive      SessionStatus = "active"
	SessionCompleted   SessionStatus = "completed"
	SessionStopped     SessionStatus = "stopped"
	SessionInterrupted SessionStatus = "interrupted"
)

// Session is the journal record of one production session.
type Session struct {
	ID        string        `json:"id"`
	Topic     string        `json:"topic"`
	Phase     models.Phase  `json:"phase"`
	Status    SessionStatus `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// CreateSession creates a new session record.
func (db *DB) CreateSession(s *Session) error {
	if s.Phase == "" {
		s.Phase = models.PhaseIdle
	}
	if s.Status == "" {
		s.Status = SessionActive
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.StartedAt
	}

	_, err := db.Exec(`
		INSERT INTO sessions (id, topic, phase, status, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.Topic, string(s.Phase), string(s.Status), formatTime(s.StartedAt), formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID. It returns nil, nil when absent.
func (db *DB) GetSession(id string) (*Session, error) {
	row := db.QueryRow(`
		SELECT id, topic, phase, status, started_at, updated_at
		FROM sessions WHERE id = ?
	`, id)

	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// UpdatePhase records the session's current phase.
func (db *DB) UpdatePhase(id string, phase models.Phase) error {
	_, err := db.Exec(`UPDATE sessions SET phase = ?, updated_at = ? WHERE id = ?`,
		string(phase), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update session phase: %w", err)
	}
	return nil
}

// UpdateStatus records the session's lifecycle status.
func (db *DB) UpdateStatus(id string, status SessionStatus) error {
	_, err := db.Exec(`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

// DeleteSession deletes a session and everything journaled for it.
func (db *DB) DeleteSession(id string) error {
	if _, err := db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListSessions lists sessions, newest first. limit <= 0 lists all.
func (db *DB) ListSessions(limit int) ([]Session, error) {
	query := `
		SELECT id, topic, phase, status, started_at, updated_at
		FROM sessions ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// MarkInterrupted flags sessions left active by a process that exited
// without finishing them. Returns the number of sessions flagged.
func (db *DB) MarkInterrupted() (int64, error) {
	result, err := db.Exec(`UPDATE sessions SET status = ?, updated_at = ? WHERE status = ?`,
		string(SessionInterrupted), formatTime(time.Now()), string(SessionActive))
	if err != nil {
		return 0, fmt.Errorf("mark interrupted sessions: %w", err)
	}
	return result.RowsAffected()
}

// ResetSession removes the session's events and final script and returns
// it to the idle phase. The session record itself is kept.
func (db *DB) ResetSession(id string) error {
	return db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM events WHERE session_id = ?", id); err != nil {
			return fmt.Errorf("reset events: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM finals WHERE session_id = ?", id); err != nil {
			return fmt.Errorf("reset final: %w", err)
		}
		_, err := tx.Exec(`UPDATE sessions SET phase = ?, status = ?, updated_at = ? WHERE id = ?`,
			string(models.PhaseIdle), string(SessionActive), formatTime(time.Now()), id)
		if err != nil {
			return fmt.Errorf("reset session: %w", err)
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var (
		s                    Session
		startedAt, updatedAt string
	)
	if err := row.Scan(&s.ID, &s.Topic, &s.Phase, &s.Status, &startedAt, &updatedAt); err != nil {
		return nil, err
	}
	s.StartedAt, _ = parseTime(startedAt)
	s.UpdatedAt, _ = parseTime(updatedAt)
	return &s, nil
}
