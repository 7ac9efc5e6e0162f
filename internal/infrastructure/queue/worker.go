package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/wms/backend/internal/application/costing"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkerConfig holds configuration for the queue worker
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	RetryBackoff time.Duration
	// VisibilityTimeout bounds how long a job may sit in PROCESSING before it
	// is considered orphaned by a crashed worker and claimed again. Must
	// exceed the longest expected handler run.
	VisibilityTimeout time.Duration
}

// DefaultWorkerConfig returns default configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:      2 * time.Second,
		BatchSize:         20,
		RetryBackoff:      30 * time.Second,
		VisibilityTimeout: 5 * time.Minute,
	}
}

// Worker polls the job table and dispatches jobs to registered handlers.
// Claiming uses SKIP LOCKED so multiple workers can share the backlog.
// Handlers must be idempotent: a crash between handling and acking redelivers
// the job.
type Worker struct {
	db       *gorm.DB
	config   WorkerConfig
	handlers map[string]costing.Handler
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a queue worker with no handlers registered
func NewWorker(db *gorm.DB, config WorkerConfig, logger *zap.Logger) *Worker {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultWorkerConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultWorkerConfig().BatchSize
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = DefaultWorkerConfig().RetryBackoff
	}
	if config.VisibilityTimeout <= 0 {
		config.VisibilityTimeout = DefaultWorkerConfig().VisibilityTimeout
	}
	return &Worker{
		db:       db,
		config:   config,
		handlers: make(map[string]costing.Handler),
		logger:   logger,
	}
}

// Register registers a handler for every code it declares
func (w *Worker) Register(handler costing.Handler) {
	for _, code := range handler.Codes() {
		w.handlers[code] = handler
	}
}

// Start starts the polling loop
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.pollLoop(ctx)

	codes := make([]string, 0, len(w.handlers))
	for code := range w.handlers {
		codes = append(codes, code)
	}
	w.logger.Info("queue worker started",
		zap.Strings("codes", codes),
		zap.Duration("poll_interval", w.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the worker
func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("queue worker stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

// processBatch claims a batch of due jobs and runs them
func (w *Worker) processBatch(ctx context.Context) {
	jobs, err := w.claimJobs(ctx)
	if err != nil {
		w.logger.Error("failed to claim jobs", zap.Error(err))
		return
	}

	for _, job := range jobs {
		w.processJob(ctx, job)
	}
}

// claimJobs atomically moves due PENDING/FAILED jobs to PROCESSING. It also
// reclaims PROCESSING rows whose last update is older than the visibility
// timeout: those belong to a worker that died between claiming and acking,
// and would otherwise be stuck forever.
func (w *Worker) claimJobs(ctx context.Context) ([]*Job, error) {
	var jobs []*Job
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		staleBefore := now.Add(-w.config.VisibilityTimeout)
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("(status IN ? AND run_after <= ?) OR (status = ? AND updated_at <= ?)",
				[]JobStatus{JobStatusPending, JobStatusFailed}, now,
				JobStatusProcessing, staleBefore).
			Order("run_after ASC").
			Limit(w.config.BatchSize).
			Find(&jobs).Error; err != nil {
			return err
		}
		if len(jobs) == 0 {
			return nil
		}

		ids := make([]any, len(jobs))
		for i, j := range jobs {
			j.Status = JobStatusProcessing
			j.UpdatedAt = now
			ids[i] = j.ID
		}
		return tx.Model(&Job{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":     JobStatusProcessing,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// processJob dispatches one job to its handler and records the outcome
func (w *Worker) processJob(ctx context.Context, job *Job) {
	handler, ok := w.handlers[job.Code]
	if !ok {
		w.failJob(ctx, job, fmt.Sprintf("no handler registered for code %s", job.Code))
		return
	}

	if err := handler.Handle(ctx, job.Code, json.RawMessage(job.Payload)); err != nil {
		w.failJob(ctx, job, err.Error())
		return
	}

	job.MarkDone()
	if err := w.db.WithContext(ctx).Save(job).Error; err != nil {
		w.logger.Error("failed to mark job done",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return
	}
	w.logger.Debug("job completed",
		zap.String("job_id", job.ID.String()),
		zap.String("code", job.Code),
	)
}

func (w *Worker) failJob(ctx context.Context, job *Job, errMsg string) {
	job.MarkFailed(errMsg, w.config.RetryBackoff)
	if job.IsDead() {
		w.logger.Warn("job exhausted its attempts and was dropped",
			zap.String("job_id", job.ID.String()),
			zap.String("code", job.Code),
			zap.Int("attempts", job.Attempts),
			zap.String("last_error", job.LastError),
		)
	} else {
		w.logger.Warn("job failed, will retry",
			zap.String("job_id", job.ID.String()),
			zap.String("code", job.Code),
			zap.Int("attempts", job.Attempts),
			zap.String("error", errMsg),
		)
	}
	if err := w.db.WithContext(ctx).Save(job).Error; err != nil {
		w.logger.Error("failed to update job after failure",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
}
