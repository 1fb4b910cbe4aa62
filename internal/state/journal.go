package state

import (
	"errors"

	"github.com/ShayCichocki/scriptroom/internal/bus"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// Journal is a bus observer that persists one session's notifications.
// The session record must exist before the first notification.
type Journal struct {
	store     Store
	sessionID string
}

// Compile-time verification that Journal implements bus.Observer.
var _ bus.Observer = (*Journal)(nil)

// NewJournal creates a journal for sessionID.
func NewJournal(store Store, sessionID string) *Journal {
	return &Journal{store: store, sessionID: sessionID}
}

// Notify implements bus.Observer.
func (j *Journal) Notify(n bus.Notification) error {
	switch n.Kind {
	case bus.KindMessage:
		if n.Event == nil {
			return nil
		}
		err := j.store.AppendEvent(j.sessionID, n.Seq, *n.Event)
		if p := n.Event.Payload; p != nil {
			if p.Final != nil {
				err = errors.Join(err, j.store.SaveFinal(j.sessionID, *p.Final))
			}
			if p.Audio != nil {
				err = errors.Join(err, j.store.SaveAudio(j.sessionID, *p.Audio))
			}
		}
		return err

	case bus.KindPhase:
		if n.Phase == nil {
			return nil
		}
		err := j.store.UpdatePhase(j.sessionID, n.Phase.Name)
		if n.Phase.Name == models.PhaseCompleted {
			err = errors.Join(err, j.store.UpdateStatus(j.sessionID, SessionCompleted))
		}
		return err
	}
	return nil
}
