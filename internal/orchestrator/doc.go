// Package orchestrator runs the production team of one session.
//
// The coordinator (the producer role) is invoked after every state change
// and answers with actions: delegate work to another role, search the web,
// edit the shared script, ask the user a question, finalize the script or
// synthesize the voiceover. The Orchestrator dispatches those actions and
// schedules the resulting worker turns on an explicit stack, bounded by a
// step budget, instead of recursing.
//
// Example usage:
//
//	orc, err := orchestrator.New(api.NewBackend(client),
//		orchestrator.WithSearcher(searcher),
//		orchestrator.WithSynthesizer(synth, voiceID))
//	if err != nil {
//		return err
//	}
//	state, err := orc.Start(ctx, "Roman aqueducts", "")
//	if state.AwaitingHuman {
//		state, err = orc.Respond(ctx, "a 1 minute video for teenagers")
//	}
package orchestrator
