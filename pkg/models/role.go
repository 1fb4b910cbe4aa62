package models

import "strings"

// Role identifies one member of the fixed worker team.
type Role string

const (
	// RoleProducer is the coordinator; it owns phase transitions and delegation.
	RoleProducer Role = "producer"
	// RoleResearcher gathers facts through web lookups.
	RoleResearcher Role = "researcher"
	// RoleWriter drafts and revises script sections.
	RoleWriter Role = "writer"
	// RoleCritic reviews drafts for structure, pacing and hook strength.
	RoleCritic Role = "critic"
	// RoleFactChecker verifies claims made in the script.
	RoleFactChecker Role = "factchecker"
	// RoleCreative proposes titles, hooks and visual ideas.
	RoleCreative Role = "creative"
	// RoleVoiceover prepares narration text and requests synthesis.
	RoleVoiceover Role = "voiceover"
)

// Sentinel participants that are not workers.
const (
	// RoleUser is the human collaborator.
	RoleUser Role = "user"
	// RoleAll addresses every participant at once.
	RoleAll Role = "all"
	// RoleSystem marks events produced by the engine itself.
	RoleSystem Role = "system"
)

// Roles lists the worker roles in roster order.
var Roles = []Role{
	RoleProducer,
	RoleResearcher,
	RoleWriter,
	RoleCritic,
	RoleFactChecker,
	RoleCreative,
	RoleVoiceover,
}

// Valid returns true if the role is one of the worker roles.
func (r Role) Valid() bool {
	switch r {
	case RoleProducer, RoleResearcher, RoleWriter, RoleCritic,
		RoleFactChecker, RoleCreative, RoleVoiceover:
		return true
	default:
		return false
	}
}

// IsHuman reports whether the role addresses the human collaborator.
func (r Role) IsHuman() bool {
	return r == RoleUser
}

// ParseRole normalizes a free-form participant identifier. Leading "@",
// case and surrounding whitespace are ignored, and "human" is accepted as
// an alias of "user". Unknown identifiers are returned as-is; callers must
// check Valid.
func ParseRole(s string) Role {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "@")))
	switch s {
	case "human":
		return RoleUser
	case "fact-checker", "fact_checker":
		return RoleFactChecker
	}
	return Role(s)
}

// Profile is the immutable identity record of a worker role.
type Profile struct {
	// ID is the role identifier.
	ID Role `json:"id" yaml:"id"`
	// Name is the display name.
	Name string `json:"name" yaml:"name"`
	// Instructions is the fixed system instruction text for the role.
	Instructions string `json:"instructions" yaml:"instructions"`
	// Capabilities lists the actions the role may request.
	Capabilities []ActionName `json:"capabilities" yaml:"capabilities"`
}

// Can reports whether the profile lists the given capability.
func (p Profile) Can(name ActionName) bool {
	for _, c := range p.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}
