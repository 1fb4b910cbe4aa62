package agent

import (
	"context"

	"github.com/ShayCichocki/scriptroom/internal/bus"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// Speaker identifies who produced a memory turn.
type Speaker string

const (
	// SpeakerInstruction marks an instruction given to the worker.
	SpeakerInstruction Speaker = "user"
	// SpeakerWorker marks the worker's own reply.
	SpeakerWorker Speaker = "assistant"
)

// Turn is one entry of a worker's conversational memory.
type Turn struct {
	Speaker Speaker
	Text    string
}

// Request is everything the reasoning backend sees for one worker turn.
type Request struct {
	// Role is the acting worker.
	Role models.Role
	// System is the role's fixed instruction text.
	System string
	// Roster lists the other roles and what they can do.
	Roster []models.Profile
	// Script is the current script snapshot.
	Script bus.Script
	// Recent is the window of recent events, oldest first.
	Recent []models.Event
	// Memory is the worker's bounded memory, oldest first.
	Memory []Turn
	// Instruction is the new instruction to act on.
	Instruction string
	// Tools are the actions the worker may request.
	Tools []models.ActionName
}

// Reply is the backend's answer: free text plus requested actions.
type Reply struct {
	Text    string
	Actions []models.Action
}

// Backend turns a request into a reply. Implementations talk to a
// reasoning service; errors are recoverable and handled by the Worker.
type Backend interface {
	Infer(ctx context.Context, req Request) (Reply, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, req Request) (Reply, error)

// Infer calls f.
func (f BackendFunc) Infer(ctx context.Context, req Request) (Reply, error) {
	return f(ctx, req)
}

// Compile-time verification that BackendFunc implements Backend.
var _ Backend = BackendFunc(nil)
