package database

import (
	"sync"

	"github.com/sigmaSd/rustman-database/internal/models"
)

// Aggregator is the single owner of the crates collection. Page tasks feed it
// concurrently; readers only ever see copies.
type Aggregator struct {
	mu     sync.Mutex
	crates []models.Crate
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Clear drops every crate
func (a *Aggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.crates = nil
}

// Push appends one crate
func (a *Aggregator) Push(c models.Crate) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.crates = append(a.crates, c)
}

// PushAll appends a batch of crates under a single lock acquisition
func (a *Aggregator) PushAll(crates []models.Crate) {
	if len(crates) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.crates = append(a.crates, crates...)
}

// Snapshot returns a copy of the current collection
func (a *Aggregator) Snapshot() []models.Crate {
	a.mu.Lock()
	defer a.mu.Unlock()
	snapshot := make([]models.Crate, len(a.crates))
	copy(snapshot, a.crates)
	return snapshot
}

// Len returns the number of crates held
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.crates)
}
