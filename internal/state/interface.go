package state

import (
	"io"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// SessionStore handles session-related persistence operations.
type SessionStore interface {
	CreateSession(s *Session) error
	GetSession(id string) (*Session, error)
	ListSessions(limit int) ([]Session, error)
	UpdatePhase(id string, phase models.Phase) error
	UpdateStatus(id string, status SessionStatus) error
	ResetSession(id string) error
}

// TranscriptStore handles event and outcome persistence.
type TranscriptStore interface {
	AppendEvent(sessionID string, seq uint64, ev models.Event) error
	Transcript(sessionID string) ([]models.Event, error)
	SaveFinal(sessionID string, f models.FinalScript) error
	SaveAudio(sessionID string, a models.AudioResult) error
	GetFinal(sessionID string) (*Final, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Store is everything the journal needs from a persistence backend.
type Store interface {
	SessionStore
	TranscriptStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ io.Closer       = (*DB)(nil)
	_ Migrator        = (*DB)(nil)
	_ SessionStore    = (*DB)(nil)
	_ TranscriptStore = (*DB)(nil)
	_ Store           = (*DB)(nil)
)
