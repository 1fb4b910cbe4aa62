package models

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Role
	}{
		{"plain", "writer", RoleWriter},
		{"at prefix", "@researcher", RoleResearcher},
		{"case and spaces", "  @Critic ", RoleCritic},
		{"human alias", "@human", RoleUser},
		{"user", "user", RoleUser},
		{"hyphenated fact checker", "fact-checker", RoleFactChecker},
		{"underscored fact checker", "@fact_checker", RoleFactChecker},
		{"all", "@all", RoleAll},
		{"unknown kept as-is", "@director", Role("director")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRole(tt.input); got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		if !r.Valid() {
			t.Errorf("Role(%q).Valid() = false, want true", r)
		}
	}
	for _, r := range []Role{RoleUser, RoleAll, RoleSystem, "", "director"} {
		if r.Valid() {
			t.Errorf("Role(%q).Valid() = true, want false", r)
		}
	}
}

func TestProfile_Can(t *testing.T) {
	p := Profile{ID: RoleWriter, Capabilities: []ActionName{ActionMutateScript, ActionDelegate}}

	if !p.Can(ActionMutateScript) {
		t.Error("writer should be able to mutate the script")
	}
	if p.Can(ActionFinalize) {
		t.Error("writer should not be able to finalize")
	}
}
