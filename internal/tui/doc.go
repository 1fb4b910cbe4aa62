// Package tui provides the full-screen terminal studio for the run command.
//
// The studio shows the conversation between the team members, a production
// panel with the phase, word envelope and script outline, and an input for
// answering the producer's questions.
//
// Usage:
//
//	program, _ := tui.NewStudioProgram(ctx, orch, topic, brief)
//	unsubscribe := orch.Bus().Subscribe(tui.Forward(program))
//	defer unsubscribe()
//	_, err := program.Run()
//
// Start and Respond run in Bubbletea commands, so the bus observer never
// blocks the event loop.
package tui
