package orchestrator

import "testing"

func TestStepBudget_TakeStopsAtLimit(t *testing.T) {
	b := NewStepBudget(3)

	for i := 0; i < 3; i++ {
		if !b.Take() {
			t.Fatalf("Take() #%d = false, want true", i+1)
		}
	}
	if b.Take() {
		t.Error("Take() past the limit should return false")
	}

	used, limit := b.Usage()
	if used != 3 || limit != 3 {
		t.Errorf("Usage() = %d/%d, want 3/3", used, limit)
	}
}

func TestStepBudget_Status(t *testing.T) {
	b := NewStepBudget(10)

	tests := []struct {
		take int
		want BudgetStatus
	}{
		{7, BudgetOK},
		{1, BudgetWarning},
		{2, BudgetExhausted},
	}

	for _, tt := range tests {
		for i := 0; i < tt.take; i++ {
			b.Take()
		}
		if got := b.Status(); got != tt.want {
			t.Errorf("Status() = %v, want %v", got, tt.want)
		}
	}
}

func TestStepBudget_Reset(t *testing.T) {
	b := NewStepBudget(1)
	b.Take()
	b.Reset()

	if !b.Take() {
		t.Error("Take() after Reset should succeed")
	}
}

func TestNewStepBudget_Default(t *testing.T) {
	_, limit := NewStepBudget(0).Usage()
	if limit != DefaultStepBudget {
		t.Errorf("limit = %d, want %d", limit, DefaultStepBudget)
	}
}

func TestBudgetStatus_String(t *testing.T) {
	tests := map[BudgetStatus]string{
		BudgetOK:         "OK",
		BudgetWarning:    "Warning",
		BudgetExhausted:  "Exhausted",
		BudgetStatus(42): "Unknown",
	}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(status), got, want)
		}
	}
}
