package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// GormQueue is the producer side of the durable queue. Enqueue writes the job
// row through the caller's transaction handle, so the job becomes visible to
// the worker only when the surrounding business transaction commits.
type GormQueue struct {
	db          *gorm.DB
	maxAttempts int
}

// NewGormQueue creates a new GORM-backed queue producer
func NewGormQueue(db *gorm.DB, maxAttempts int) *GormQueue {
	if maxAttempts <= 0 {
		maxAttempts = 2
	}
	return &GormQueue{db: db, maxAttempts: maxAttempts}
}

// WithTx returns a producer bound to the given transaction
func (q *GormQueue) WithTx(tx *gorm.DB) *GormQueue {
	return &GormQueue{db: tx, maxAttempts: q.maxAttempts}
}

// Enqueue adds a job with the given code and JSON-serializable params
func (q *GormQueue) Enqueue(ctx context.Context, code string, params any) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal job params: %w", err)
	}
	job := NewJob(code, payload, q.maxAttempts)
	return q.db.WithContext(ctx).Create(job).Error
}
