package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/docflow/docflow/errors"
	"github.com/docflow/docflow/extract"
)

const (
	// subscriberBufferSize is the buffer for job-update subscriber channels
	subscriberBufferSize = 100

	// stopTimeout bounds how long Stop waits for workers to drain
	stopTimeout = 30 * time.Second
)

// PoolConfig contains configuration for the worker pool
type PoolConfig struct {
	Workers    int           // Number of concurrent extraction workers
	QueueDepth int           // Capacity of the submission queue
	Timeout    time.Duration // Per-job processing deadline; 0 disables
}

// DefaultPoolConfig returns sensible defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:    2,
		QueueDepth: 256,
		Timeout:    5 * time.Minute,
	}
}

type work struct {
	jobID string
	doc   extract.Document
}

// WorkerPool is a fixed-size pool of workers that drain a FIFO queue and
// drive submitted jobs through the extraction engine. The pool size
// bounds engine concurrency; the queue is sized to the store's admission
// ceiling so a successful Store.Create always finds queue room.
type WorkerPool struct {
	store   *Store
	engine  extract.Engine
	cfg     PoolConfig
	queue   chan work
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  *zap.SugaredLogger
	subMu   sync.Mutex
	subs    []chan Record
	started bool
}

// NewWorkerPool creates a worker pool. The parent context controls the
// pool's lifetime: cancelling it stops the workers, and each job's engine
// call runs under a child of it.
func NewWorkerPool(ctx context.Context, store *Store, engine extract.Engine, cfg PoolConfig, logger *zap.SugaredLogger) *WorkerPool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = 256
	}

	poolCtx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		store:  store,
		engine: engine,
		cfg:    cfg,
		queue:  make(chan work, cfg.QueueDepth),
		ctx:    poolCtx,
		cancel: cancel,
		logger: logger.Named("pool"),
	}
}

// Start begins processing submitted jobs
func (p *WorkerPool) Start() {
	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Infow("Worker pool started", "workers", p.cfg.Workers, "queue_depth", p.cfg.QueueDepth)
}

// Stop cancels the workers and waits for them to exit, bounded by
// stopTimeout so shutdown never hangs on a stuck engine call.
func (p *WorkerPool) Stop() {
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Infow("Worker pool stopped")
	case <-time.After(stopTimeout):
		p.logger.Warnw("Worker pool stop timed out, abandoning workers", "timeout", stopTimeout)
	}
}

// Submit enqueues a claimed job for processing. Never blocks: the queue
// is sized to the admission ceiling, so a full queue means the ceiling
// and queue depth are misconfigured relative to each other.
func (p *WorkerPool) Submit(jobID string, doc extract.Document) error {
	select {
	case p.queue <- work{jobID: jobID, doc: doc}:
		return nil
	default:
		return errors.Wrap(errors.ErrResourceExhausted, "worker queue full")
	}
}

// Workers returns the configured worker count
func (p *WorkerPool) Workers() int {
	return p.cfg.Workers
}

// Subscribe returns a buffered channel receiving job-record updates.
// Callers must Unsubscribe when done; the channel is never closed by the
// pool, so unsubscribing first avoids double-close panics.
func (p *WorkerPool) Subscribe() chan Record {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	ch := make(chan Record, subscriberBufferSize)
	p.subs = append(p.subs, ch)
	return ch
}

// Unsubscribe removes a subscriber channel
func (p *WorkerPool) Unsubscribe(ch chan Record) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	for i, sub := range p.subs {
		if sub == ch {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			return
		}
	}
}

// Broadcast sends a record snapshot to all subscribers. Non-blocking:
// slow subscribers miss updates rather than stalling workers.
func (p *WorkerPool) Broadcast(rec Record) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	for _, ch := range p.subs {
		select {
		case ch <- rec:
		default:
		}
	}
}

// worker drains the queue until the pool context is cancelled
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	log := p.logger.With("worker_id", id)
	for {
		select {
		case <-p.ctx.Done():
			return
		case w := <-p.queue:
			p.process(w, log)
		}
	}
}

type engineOutcome struct {
	result *extract.Result
	err    error
}

// process drives one job through the engine. Engine failures are
// recorded on the job record and never escape: a worker survives every
// job outcome and keeps accepting work.
func (p *WorkerPool) process(w work, log *zap.SugaredLogger) {
	// The worker owns the temp document for the duration of processing;
	// release it on every exit path
	defer func() {
		if err := w.doc.Remove(); err != nil {
			log.Warnw("Failed to remove job document", "job_id", w.jobID, "error", err)
		}
	}()

	// Claim: pending -> processing. A job cancelled while still pending
	// is finalized here without the engine ever being invoked.
	snap, err := p.store.Update(w.jobID, func(r *Record) error {
		if r.Status.Terminal() {
			return errors.ErrAlreadyTerminal
		}
		if r.CancelRequested {
			r.Cancel("cancelled before processing started")
			return nil
		}
		r.Start()
		r.UpdateProgress(10, "processing started")
		return nil
	})
	if err != nil {
		if !errors.IsAlreadyTerminalError(err) && !errors.IsNotFoundError(err) {
			log.Errorw("Failed to claim job", "job_id", w.jobID, "error", err)
		}
		return
	}
	p.Broadcast(snap)
	if snap.Status == StatusCancelled {
		log.Infow("Job cancelled before engine invocation", "job_id", w.jobID)
		return
	}

	log.Infow("Job processing started", "job_id", w.jobID, "document", snap.DocumentName)

	// Engine calls run under a per-job context: cancelled on timeout and
	// at cooperative checkpoints, so an interruptible engine stops
	// promptly while an opaque one is merely abandoned.
	jobCtx, cancelJob := context.WithCancel(p.ctx)
	defer cancelJob()

	progressFn := func(pct int, message string) {
		rec, updErr := p.store.Update(w.jobID, func(r *Record) error {
			if r.Status != StatusProcessing {
				return nil
			}
			if r.CancelRequested {
				// Stage-boundary checkpoint: stop feeding the engine
				cancelJob()
				return nil
			}
			r.UpdateProgress(pct, message)
			return nil
		})
		if updErr == nil {
			p.Broadcast(rec)
		}
	}

	outcomeCh := make(chan engineOutcome, 1)
	go func() {
		res, engErr := p.engine.Extract(jobCtx, w.doc, progressFn)
		outcomeCh <- engineOutcome{result: res, err: engErr}
	}()

	var deadline <-chan time.Time
	if p.cfg.Timeout > 0 {
		timer := time.NewTimer(p.cfg.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case out := <-outcomeCh:
		p.finalize(w.jobID, out, log)

	case <-deadline:
		// The engine call may still be running; the slot is released and
		// the call drains in the background once jobCtx cancellation
		// reaches it (or never, if the engine ignores its context)
		cancelJob()
		rec, updErr := p.store.Update(w.jobID, func(r *Record) error {
			if r.Status.Terminal() {
				return nil
			}
			r.Fail(errors.Wrapf(errors.ErrTimeout, "processing exceeded %s", p.cfg.Timeout))
			return nil
		})
		if updErr == nil {
			p.Broadcast(rec)
		}
		log.Warnw("Job timed out", "job_id", w.jobID, "timeout", p.cfg.Timeout)

	case <-p.ctx.Done():
		rec, updErr := p.store.Update(w.jobID, func(r *Record) error {
			if r.Status.Terminal() {
				return nil
			}
			r.Fail(errors.New("worker pool shut down during processing"))
			return nil
		})
		if updErr == nil {
			p.Broadcast(rec)
		}
	}
}

// finalize applies the engine outcome, honoring the post-call
// cancellation checkpoint: a cancelled job discards its result.
func (p *WorkerPool) finalize(jobID string, out engineOutcome, log *zap.SugaredLogger) {
	rec, err := p.store.Update(jobID, func(r *Record) error {
		if r.Status != StatusProcessing {
			return nil
		}
		if r.CancelRequested {
			r.Cancel("cancelled during processing")
			return nil
		}
		if out.err != nil {
			r.Fail(out.err)
			return nil
		}
		r.Complete(out.result)
		return nil
	})
	if err != nil {
		log.Warnw("Failed to finalize job", "job_id", jobID, "error", err)
		return
	}
	p.Broadcast(rec)

	switch rec.Status {
	case StatusCompleted:
		log.Infow("Job completed", "job_id", jobID)
	case StatusFailed:
		log.Warnw("Job failed", "job_id", jobID, "error", rec.Error)
	case StatusCancelled:
		log.Infow("Job cancelled, result discarded", "job_id", jobID)
	}
}
