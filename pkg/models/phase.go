package models

// Phase is the production phase of a session.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseClarifying  Phase = "clarifying"
	PhaseResearching Phase = "researching"
	PhaseWriting     Phase = "writing"
	PhaseReviewing   Phase = "reviewing"
	PhaseCreative    Phase = "creative"
	PhaseVoiceover   Phase = "voiceover"
	PhaseCompleted   Phase = "completed"
)

// Description returns a human-readable description of the phase.
func (p Phase) Description() string {
	switch p {
	case PhaseIdle:
		return "Waiting for a topic"
	case PhaseClarifying:
		return "Clarifying the brief with you"
	case PhaseResearching:
		return "Researching the topic"
	case PhaseWriting:
		return "Writing the script"
	case PhaseReviewing:
		return "Reviewing and fact-checking"
	case PhaseCreative:
		return "Polishing hooks, title and visuals"
	case PhaseVoiceover:
		return "Recording the voiceover"
	case PhaseCompleted:
		return "Production complete"
	default:
		return string(p)
	}
}

// PhaseFor returns the phase entered when work is delegated to the role.
// The second result is false for roles that do not imply a phase change.
func PhaseFor(r Role) (Phase, bool) {
	switch r {
	case RoleResearcher:
		return PhaseResearching, true
	case RoleWriter:
		return PhaseWriting, true
	case RoleCritic, RoleFactChecker:
		return PhaseReviewing, true
	case RoleCreative:
		return PhaseCreative, true
	case RoleVoiceover:
		return PhaseVoiceover, true
	default:
		return "", false
	}
}
