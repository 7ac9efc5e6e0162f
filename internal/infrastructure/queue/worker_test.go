package queue

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockWorker(t *testing.T, cfg WorkerConfig) (*Worker, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return NewWorker(db, cfg, zap.NewNop()), mock
}

func TestWorkerClaimJobs(t *testing.T) {
	t.Run("claims due jobs and stale processing rows in one pass", func(t *testing.T) {
		w, mock := newMockWorker(t, WorkerConfig{BatchSize: 2, VisibilityTimeout: time.Minute})
		orphanID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .* FROM "queue_jobs" WHERE \(status IN .+ AND run_after <= .+\) OR \(status = .+ AND updated_at <= .+\) ORDER BY run_after ASC LIMIT .+ FOR UPDATE SKIP LOCKED`).
			WithArgs(string(JobStatusPending), string(JobStatusFailed), sqlmock.AnyArg(),
				string(JobStatusProcessing), sqlmock.AnyArg(), 2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "code", "status", "attempts", "max_attempts"}).
				AddRow(orphanID, "UPDATE_COST", string(JobStatusProcessing), 0, 2))
		mock.ExpectExec(`UPDATE "queue_jobs" SET "status"=.+,"updated_at"=.+ WHERE id IN .+`).
			WithArgs(string(JobStatusProcessing), sqlmock.AnyArg(), orphanID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		jobs, err := w.claimJobs(context.Background())
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, orphanID, jobs[0].ID)
		assert.Equal(t, JobStatusProcessing, jobs[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("an empty backlog skips the status update", func(t *testing.T) {
		w, mock := newMockWorker(t, WorkerConfig{BatchSize: 5, VisibilityTimeout: time.Minute})

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .* FROM "queue_jobs"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectCommit()

		jobs, err := w.claimJobs(context.Background())
		require.NoError(t, err)
		assert.Empty(t, jobs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("defaults the visibility timeout", func(t *testing.T) {
		w, _ := newMockWorker(t, WorkerConfig{})
		assert.Equal(t, 5*time.Minute, w.config.VisibilityTimeout)
	})
}
