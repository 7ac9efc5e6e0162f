package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a queued job
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusDone       JobStatus = "DONE"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusDead       JobStatus = "DEAD"
)

// Job is a persisted unit of background work. Jobs are enqueued inside the
// business transaction and picked up by the worker after commit, so a job
// never references state that was rolled back.
type Job struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code        string    `gorm:"size:64;not null;index"`
	Payload     []byte    `gorm:"type:jsonb;not null"`
	Status      JobStatus `gorm:"size:16;not null;default:'PENDING';index"`
	Attempts    int       `gorm:"not null;default:0"`
	MaxAttempts int       `gorm:"not null;default:2"`
	LastError   string    `gorm:"type:text"`
	RunAfter    time.Time `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (Job) TableName() string {
	return "queue_jobs"
}

// NewJob creates a pending job
func NewJob(code string, payload []byte, maxAttempts int) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.New(),
		Code:        code,
		Payload:     payload,
		Status:      JobStatusPending,
		MaxAttempts: maxAttempts,
		RunAfter:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarkDone marks the job as successfully completed
func (j *Job) MarkDone() {
	j.Status = JobStatusDone
	j.UpdatedAt = time.Now()
}

// MarkFailed records a failed attempt. The job is retried until the attempt
// budget is spent, then parked as dead.
func (j *Job) MarkFailed(errMsg string, backoff time.Duration) {
	j.Attempts++
	j.LastError = errMsg
	j.UpdatedAt = time.Now()

	if j.Attempts >= j.MaxAttempts {
		j.Status = JobStatusDead
	} else {
		j.Status = JobStatusFailed
		j.RunAfter = time.Now().Add(backoff * time.Duration(j.Attempts))
	}
}

// IsDead returns true if the job has exhausted its attempts
func (j *Job) IsDead() bool {
	return j.Status == JobStatusDead
}
