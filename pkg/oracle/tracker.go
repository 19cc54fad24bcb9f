package oracle

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/tarper/pkg/observability"
)

// Tracker wraps an oracle for one strategy run. It counts evaluations,
// remembers the cheapest successful ordering and reports each call to the
// search hooks under the strategy name.
type Tracker struct {
	inner Oracle
	name  string

	mu          sync.Mutex
	evaluations int
	failures    int
	best        []string
	bestCost    int64
}

// NewTracker wraps inner for the strategy called name.
func NewTracker(inner Oracle, name string) *Tracker {
	return &Tracker{inner: inner, name: name}
}

// Cost measures files with the inner oracle.
func (t *Tracker) Cost(ctx context.Context, files []string) (int64, error) {
	start := time.Now()
	cost, err := t.inner.Cost(ctx, files)
	observability.Search().OnEvaluate(ctx, t.name, cost, time.Since(start), err)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.evaluations++
	if err != nil {
		t.failures++
		return 0, err
	}
	if t.best == nil || cost < t.bestCost {
		t.best = slices.Clone(files)
		t.bestCost = cost
	}
	return cost, nil
}

// Evaluations returns the number of calls, failed ones included.
func (t *Tracker) Evaluations() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.evaluations
}

// Failures returns the number of failed calls.
func (t *Tracker) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures
}

// Best returns a copy of the cheapest ordering measured so far, its cost, and
// false if nothing was measured successfully.
func (t *Tracker) Best() ([]string, int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.best == nil {
		return nil, 0, false
	}
	return slices.Clone(t.best), t.bestCost, true
}

var _ Oracle = (*Tracker)(nil)
