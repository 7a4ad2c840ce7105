package job

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/docflow/docflow/errors"
	"github.com/docflow/docflow/extract"
)

// Manager is the public contract of the job system: submit, get-status,
// cancel. It composes the Store and WorkerPool; this is what the HTTP
// boundary calls. Submit never blocks on extraction.
type Manager struct {
	store          *Store
	pool           *WorkerPool
	maxUploadBytes int64
	logger         *zap.SugaredLogger
}

// NewManager creates a job manager. maxUploadBytes is the document size
// ceiling enforced at submission; 0 disables the ceiling.
func NewManager(store *Store, pool *WorkerPool, maxUploadBytes int64, logger *zap.SugaredLogger) *Manager {
	return &Manager{
		store:          store,
		pool:           pool,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Submit validates the document, registers a pending job, hands the
// document to the worker pool, and returns the record snapshot
// immediately. Two submissions of byte-identical documents produce two
// independent jobs; there is no content deduplication.
func (m *Manager) Submit(name string, data []byte) (Record, error) {
	if len(data) == 0 {
		return Record{}, errors.Wrap(errors.ErrInvalidRequest, "document is empty")
	}
	if m.maxUploadBytes > 0 && int64(len(data)) > m.maxUploadBytes {
		return Record{}, errors.Wrapf(errors.ErrInvalidRequest,
			"document of %d bytes exceeds limit of %d bytes", len(data), m.maxUploadBytes)
	}

	doc, err := m.spool(name, data)
	if err != nil {
		return Record{}, err
	}

	rec, err := m.store.Create(name)
	if err != nil {
		// Admission refused: the temp file has no owner, clean it here
		if rmErr := doc.Remove(); rmErr != nil {
			m.logger.Warnw("Failed to remove rejected document", "error", rmErr)
		}
		return Record{}, err
	}

	if err := m.pool.Submit(rec.ID, doc); err != nil {
		failed, updErr := m.store.Update(rec.ID, func(r *Record) error {
			r.Fail(err)
			return nil
		})
		if updErr == nil {
			m.pool.Broadcast(failed)
		}
		if rmErr := doc.Remove(); rmErr != nil {
			m.logger.Warnw("Failed to remove unqueued document", "error", rmErr)
		}
		return Record{}, err
	}

	m.logger.Infow("Job submitted", "job_id", rec.ID, "document", name, "size", len(data))
	return rec, nil
}

// GetStatus returns the current snapshot of the job, or ErrNotFound for
// unknown and expired ids alike.
func (m *Manager) GetStatus(id string) (Record, error) {
	return m.store.Get(id)
}

// Cancel requests cancellation. A still-pending job transitions to
// cancelled right away; a processing job gets its flag set for the worker
// to observe at the next checkpoint. Cancelling a finished job returns
// ErrAlreadyTerminal, which callers treat as a no-op signal rather than
// a failure.
func (m *Manager) Cancel(id string) (Record, error) {
	rec, err := m.store.Update(id, func(r *Record) error {
		if r.Status.Terminal() {
			return errors.Wrapf(errors.ErrAlreadyTerminal, "job %s is %s", id, r.Status)
		}
		if r.Status == StatusPending {
			r.Cancel("cancelled by user")
			return nil
		}
		r.CancelRequested = true
		r.Message = "cancellation requested"
		return nil
	})
	if err != nil {
		return rec, err
	}

	m.pool.Broadcast(rec)
	m.logger.Infow("Job cancellation requested", "job_id", id, "status", rec.Status)
	return rec, nil
}

// List returns snapshots of up to limit tracked jobs, newest first
func (m *Manager) List(limit int) []Record {
	return m.store.List(limit)
}

// Subscribe returns a channel of job-record updates for push consumers.
// Polling GetStatus remains the authoritative contract; the subscription
// is additive.
func (m *Manager) Subscribe() chan Record {
	return m.pool.Subscribe()
}

// Unsubscribe releases a subscription channel
func (m *Manager) Unsubscribe(ch chan Record) {
	m.pool.Unsubscribe(ch)
}

// spool writes the uploaded bytes to a temp file owned by the job
func (m *Manager) spool(name string, data []byte) (extract.Document, error) {
	f, err := os.CreateTemp("", "docflow-*"+filepath.Ext(name))
	if err != nil {
		return extract.Document{}, errors.Wrap(err, "failed to create temp document")
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return extract.Document{}, errors.Wrap(err, "failed to write temp document")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return extract.Document{}, errors.Wrap(err, "failed to close temp document")
	}

	return extract.Document{
		Name: name,
		Path: f.Name(),
		Size: int64(len(data)),
	}, nil
}
