package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/scriptroom/internal/bus"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

func TestJournal_RecordsBusTraffic(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.CreateSession(&Session{ID: "s1", Topic: "Roman aqueducts"}))

	b := bus.New()
	b.Subscribe(NewJournal(db, "s1"))

	b.Append(models.Event{From: models.RoleUser, To: models.RoleProducer, Body: "1 minute please"})
	b.PublishPhase(models.PhaseWriting)
	_, err := b.MutateScript("hook", "Water went uphill.", bus.OpCreate)
	require.NoError(t, err)
	b.Append(models.Event{
		From: models.RoleSystem,
		To:   models.RoleAll,
		Kind: models.EventApproval,
		Body: "Final script accepted",
		Payload: &models.Payload{Final: &models.FinalScript{
			Title: "Aqueducts", Script: "Water went uphill.", WordCount: 3, EstimatedMinutes: 0.0,
		}},
	})
	b.Append(models.Event{
		From:    models.RoleSystem,
		To:      models.RoleAll,
		Kind:    models.EventResult,
		Body:    "Voiceover ready",
		Payload: &models.Payload{Audio: &models.AudioResult{URL: "file:///a.mp3", DurationSeconds: 61, Chunks: 1}},
	})
	b.PublishPhase(models.PhaseCompleted)

	events, err := db.Transcript("s1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "1 minute please", events[0].Body)
	assert.Equal(t, models.RoleUser, events[0].From)
	assert.Nil(t, events[0].Payload)
	require.NotNil(t, events[1].Payload)
	assert.Equal(t, "Aqueducts", events[1].Payload.Final.Title)

	final, err := db.GetFinal("s1")
	require.NoError(t, err)
	require.NotNil(t, final)
	require.NotNil(t, final.Script)
	assert.Equal(t, "Water went uphill.", final.Script.Script)
	require.NotNil(t, final.Audio)
	assert.Equal(t, 61.0, final.Audio.DurationSeconds)

	s, err := db.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCompleted, s.Phase)
	assert.Equal(t, SessionCompleted, s.Status)
}

func TestJournal_AudioWithoutFinal(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.CreateSession(&Session{ID: "s1", Topic: "t"}))

	require.NoError(t, db.SaveAudio("s1", models.AudioResult{URL: "u", DurationSeconds: 5}))
	final, err := db.GetFinal("s1")
	require.NoError(t, err)
	require.NotNil(t, final)
	assert.Nil(t, final.Script)
	assert.Equal(t, "u", final.Audio.URL)
}

func TestResetSession(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.CreateSession(&Session{ID: "s1", Topic: "t"}))
	j := NewJournal(db, "s1")

	require.NoError(t, j.Notify(bus.Notification{Seq: 1, Kind: bus.KindMessage, Event: &models.Event{ID: "e1", Body: "hi", From: models.RoleUser, To: models.RoleProducer, Kind: models.EventInfo}}))
	require.NoError(t, db.SaveFinal("s1", models.FinalScript{Title: "x", Script: "y"}))
	require.NoError(t, db.UpdatePhase("s1", models.PhaseReviewing))

	require.NoError(t, db.ResetSession("s1"))

	events, err := db.Transcript("s1")
	require.NoError(t, err)
	assert.Empty(t, events)
	final, err := db.GetFinal("s1")
	require.NoError(t, err)
	assert.Nil(t, final)
	s, _ := db.GetSession("s1")
	assert.Equal(t, models.PhaseIdle, s.Phase)
}

func TestJournal_UnknownSessionFails(t *testing.T) {
	db := setupTestDB(t)
	j := NewJournal(db, "ghost")

	err := j.Notify(bus.Notification{Seq: 1, Kind: bus.KindMessage, Event: &models.Event{ID: "e1", Body: "hi"}})
	assert.Error(t, err, "foreign key requires the session record")
}
