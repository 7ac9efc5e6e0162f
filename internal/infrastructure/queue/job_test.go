package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	job := NewJob("UPDATE_COST", []byte(`{"receiptId":"x"}`), 3)

	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 0, job.Attempts)
	assert.Equal(t, 3, job.MaxAttempts)
	assert.False(t, job.IsDead())
	assert.False(t, job.RunAfter.After(time.Now()))
}

func TestJobMarkDone(t *testing.T) {
	job := NewJob("UPDATE_COST", nil, 3)
	job.MarkDone()
	assert.Equal(t, JobStatusDone, job.Status)
}

func TestJobMarkFailed(t *testing.T) {
	t.Run("retries with a growing delay until attempts run out", func(t *testing.T) {
		job := NewJob("UPDATE_COST", nil, 3)

		job.MarkFailed("db timeout", time.Minute)
		assert.Equal(t, JobStatusFailed, job.Status)
		assert.Equal(t, 1, job.Attempts)
		assert.Equal(t, "db timeout", job.LastError)
		assert.True(t, job.RunAfter.After(time.Now()))

		firstDelay := job.RunAfter
		job.MarkFailed("db timeout", time.Minute)
		assert.Equal(t, JobStatusFailed, job.Status)
		assert.True(t, job.RunAfter.After(firstDelay))

		job.MarkFailed("db timeout", time.Minute)
		assert.Equal(t, JobStatusDead, job.Status)
		assert.True(t, job.IsDead())
	})

	t.Run("a single-attempt job dies on the first failure", func(t *testing.T) {
		job := NewJob("UPDATE_COST", nil, 1)
		job.MarkFailed("boom", time.Minute)
		require.True(t, job.IsDead())
		assert.Equal(t, 1, job.Attempts)
	})
}
