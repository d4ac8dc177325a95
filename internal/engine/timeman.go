package engine

import (
	"time"
)

// TimeManager tracks the think-time budget of one search.
// The budget is only checked between iterative deepening iterations; an
// iteration that has started always completes.
type TimeManager struct {
	budget    time.Duration // Zero means no budget
	startTime time.Time     // When search started
}

// NewTimeManager creates a time manager with the given budget.
func NewTimeManager(budget time.Duration) *TimeManager {
	return &TimeManager{budget: budget}
}

// Start begins timing a new search.
func (tm *TimeManager) Start() {
	tm.startTime = time.Now()
}

// Elapsed returns time since the search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Exhausted returns true if the budget is used up.
func (tm *TimeManager) Exhausted() bool {
	return tm.budget > 0 && tm.Elapsed() >= tm.budget
}

// Budget returns the configured budget.
func (tm *TimeManager) Budget() time.Duration {
	return tm.budget
}
