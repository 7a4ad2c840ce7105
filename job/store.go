package job

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/docflow/docflow/errors"
)

// Store is the in-memory registry of job records. The registry map is
// guarded by an RWMutex; each record additionally carries its own mutex
// so concurrent updates to different jobs never contend.
//
// Readers always receive copies, never live pointers, so a snapshot can
// outlive a sweep without exposing a half-cleared record.
type Store struct {
	mu         sync.RWMutex
	jobs       map[string]*trackedJob
	maxTracked int
	logger     *zap.SugaredLogger
}

type trackedJob struct {
	mu  sync.Mutex
	rec Record
}

// NewStore creates a store with the given admission ceiling. maxTracked
// bounds the number of simultaneously tracked jobs (pending, processing
// and not-yet-swept terminal records alike) and is the backpressure
// mechanism protecting memory.
func NewStore(maxTracked int, logger *zap.SugaredLogger) *Store {
	return &Store{
		jobs:       make(map[string]*trackedJob),
		maxTracked: maxTracked,
		logger:     logger,
	}
}

// Create allocates a fresh pending record and returns its snapshot.
// Returns ErrResourceExhausted when the admission ceiling is reached;
// no record is created in that case.
func (s *Store) Create(documentName string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxTracked > 0 && len(s.jobs) >= s.maxTracked {
		err := errors.Wrapf(errors.ErrResourceExhausted, "job store at capacity (%d tracked)", len(s.jobs))
		return Record{}, errors.WithHint(err, "retry after in-flight jobs finish")
	}

	rec := NewRecord(documentName)
	s.jobs[rec.ID] = &trackedJob{rec: rec}

	s.logger.Debugw("Job record created", "job_id", rec.ID, "document", documentName, "tracked", len(s.jobs))
	return rec, nil
}

// Get returns a consistent snapshot of the record
func (s *Store) Get(id string) (Record, error) {
	tj, err := s.lookup(id)
	if err != nil {
		return Record{}, err
	}

	tj.mu.Lock()
	defer tj.mu.Unlock()
	return tj.rec, nil
}

// Update applies an atomic mutation to the record and returns the
// post-mutation snapshot. Mutations to the same job are serialized; a
// mutator returning an error leaves the record untouched only if it
// mutated nothing itself, so mutators must not write before deciding.
func (s *Store) Update(id string, mutate func(*Record) error) (Record, error) {
	tj, err := s.lookup(id)
	if err != nil {
		return Record{}, err
	}

	tj.mu.Lock()
	defer tj.mu.Unlock()

	if err := mutate(&tj.rec); err != nil {
		return tj.rec, err
	}
	return tj.rec, nil
}

// List returns snapshots of up to limit records, newest first
func (s *Store) List(limit int) []Record {
	s.mu.RLock()
	tracked := make([]*trackedJob, 0, len(s.jobs))
	for _, tj := range s.jobs {
		tracked = append(tracked, tj)
	}
	s.mu.RUnlock()

	records := make([]Record, 0, len(tracked))
	for _, tj := range tracked {
		tj.mu.Lock()
		records = append(records, tj.rec)
		tj.mu.Unlock()
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

// Len returns the number of currently tracked jobs
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// SweepTerminal removes terminal records whose completion predates the
// cutoff. Returns the number of records removed.
func (s *Store) SweepTerminal(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, tj := range s.jobs {
		tj.mu.Lock()
		expired := tj.rec.Status.Terminal() &&
			tj.rec.CompletedAt != nil &&
			tj.rec.CompletedAt.Before(cutoff)
		tj.mu.Unlock()

		if expired {
			delete(s.jobs, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debugw("Swept terminal job records", "removed", removed, "tracked", len(s.jobs))
	}
	return removed
}

// StartReaper launches the background sweep loop. It runs until ctx is
// cancelled, sweeping terminal records older than retention.
func (s *Store) StartReaper(ctx context.Context, interval, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SweepTerminal(retention)
			}
		}
	}()
}

func (s *Store) lookup(id string) (*trackedJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tj, ok := s.jobs[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "job %s", id)
	}
	return tj, nil
}
