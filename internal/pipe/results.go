package pipe

import (
	"sync"

	"github.com/inodb/vibe-filter/internal/vcf"
)

// Results accumulates the outcome of a pipe run. It is safe to read while
// the run is still in progress.
type Results struct {
	mu        sync.RWMutex
	records   []*vcf.Record
	filtered  int64
	lines     int64
	cancelled bool
}

// Snapshot returns a copy of the retained records.
func (r *Results) Snapshot() []*vcf.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*vcf.Record(nil), r.records...)
}

// Len returns the number of retained records.
func (r *Results) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Filtered returns the number of records that passed, retained or not.
func (r *Results) Filtered() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filtered
}

// Lines returns the number of records examined.
func (r *Results) Lines() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lines
}

// Cancelled reports whether the run stopped early because its context
// was cancelled.
func (r *Results) Cancelled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cancelled
}

func (r *Results) examine() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines++
	return r.lines
}

func (r *Results) pass(rec *vcf.Record, max int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filtered++
	if len(r.records) < max {
		r.records = append(r.records, rec)
	}
}

func (r *Results) cancel() {
	r.mu.Lock()
	r.cancelled = true
	r.mu.Unlock()
}
