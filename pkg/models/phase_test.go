package models

import "testing"

func TestPhaseFor(t *testing.T) {
	tests := []struct {
		role   Role
		want   Phase
		wantOK bool
	}{
		{RoleResearcher, PhaseResearching, true},
		{RoleWriter, PhaseWriting, true},
		{RoleCritic, PhaseReviewing, true},
		{RoleFactChecker, PhaseReviewing, true},
		{RoleCreative, PhaseCreative, true},
		{RoleVoiceover, PhaseVoiceover, true},
		{RoleProducer, "", false},
		{RoleUser, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got, ok := PhaseFor(tt.role)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("PhaseFor(%q) = (%q, %v), want (%q, %v)", tt.role, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPhase_Description(t *testing.T) {
	phases := []Phase{PhaseIdle, PhaseClarifying, PhaseResearching, PhaseWriting,
		PhaseReviewing, PhaseCreative, PhaseVoiceover, PhaseCompleted}
	seen := make(map[string]bool)
	for _, p := range phases {
		d := p.Description()
		if d == "" || d == string(p) {
			t.Errorf("Phase(%q) has no description", p)
		}
		if seen[d] {
			t.Errorf("description %q is used twice", d)
		}
		seen[d] = true
	}
	if got := Phase("custom").Description(); got != "custom" {
		t.Errorf("unknown phase description = %q, want custom", got)
	}
}

func TestKinds_Valid(t *testing.T) {
	for _, k := range []EventKind{EventInfo, EventQuestion, EventTask, EventResult, EventFeedback, EventApproval} {
		if !k.Valid() {
			t.Errorf("EventKind(%q).Valid() = false", k)
		}
	}
	if EventKind("chat").Valid() {
		t.Error(`EventKind("chat").Valid() = true`)
	}
	for _, a := range Actions {
		if !a.Valid() {
			t.Errorf("ActionName(%q).Valid() = false", a)
		}
	}
	if ActionName("deploy").Valid() {
		t.Error(`ActionName("deploy").Valid() = true`)
	}
}
