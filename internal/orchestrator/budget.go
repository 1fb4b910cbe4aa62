package orchestrator

import "sync"

// BudgetStatus represents the current state of step consumption.
type BudgetStatus int

const (
	// BudgetOK indicates usage is below the warning threshold.
	BudgetOK BudgetStatus = iota
	// BudgetWarning indicates usage is between the warning threshold and the limit.
	BudgetWarning
	// BudgetExhausted indicates every step has been used.
	BudgetExhausted
)

// String returns a human-readable representation of the budget status.
func (s BudgetStatus) String() string {
	switch s {
	case BudgetOK:
		return "OK"
	case BudgetWarning:
		return "Warning"
	case BudgetExhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}

// DefaultStepBudget is the number of reasoning calls a session may make.
const DefaultStepBudget = 30

// DefaultWarningThreshold is the fraction of the budget at which warnings begin.
const DefaultWarningThreshold = 0.80

// StepBudget counts reasoning calls against a fixed limit. It is consulted
// before every worker invocation, so the limit is never exceeded.
type StepBudget struct {
	limit int
	used  int
	mu    sync.Mutex
}

// NewStepBudget creates a budget of limit steps. Non-positive limits use
// DefaultStepBudget.
func NewStepBudget(limit int) *StepBudget {
	if limit <= 0 {
		limit = DefaultStepBudget
	}
	return &StepBudget{limit: limit}
}

// Take consumes one step. It returns false, consuming nothing, when the
// budget is exhausted.
func (b *StepBudget) Take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

// Status returns the current budget status.
func (b *StepBudget) Status() BudgetStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.used >= b.limit:
		return BudgetExhausted
	case float64(b.used) >= DefaultWarningThreshold*float64(b.limit):
		return BudgetWarning
	default:
		return BudgetOK
	}
}

// Usage returns the steps used and the limit.
func (b *StepBudget) Usage() (used, limit int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used, b.limit
}

// Reset clears the usage counter.
func (b *StepBudget) Reset() {
	b.mu.Lock()
	b.used = 0
	b.mu.Unlock()
}
