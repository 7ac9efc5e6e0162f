package queue

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newQueueDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named in-memory database keeps every pooled connection on the same
	// schema while staying isolated per test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Job{}))
	return db
}

func TestGormQueueEnqueue(t *testing.T) {
	t.Run("writes a pending job row", func(t *testing.T) {
		db := newQueueDB(t)
		q := NewGormQueue(db, 3)

		require.NoError(t, q.Enqueue(context.Background(), "UPDATE_COST", map[string]string{"receiptId": "x"}))

		var jobs []Job
		require.NoError(t, db.Find(&jobs).Error)
		require.Len(t, jobs, 1)
		assert.Equal(t, "UPDATE_COST", jobs[0].Code)
		assert.Equal(t, JobStatusPending, jobs[0].Status)
		assert.Equal(t, 3, jobs[0].MaxAttempts)
		assert.JSONEq(t, `{"receiptId":"x"}`, string(jobs[0].Payload))
	})

	t.Run("rejects unmarshalable params before touching the database", func(t *testing.T) {
		db := newQueueDB(t)
		q := NewGormQueue(db, 3)

		require.Error(t, q.Enqueue(context.Background(), "UPDATE_COST", make(chan int)))

		var count int64
		require.NoError(t, db.Model(&Job{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("defaults the attempt budget", func(t *testing.T) {
		q := NewGormQueue(newQueueDB(t), 0)
		assert.Equal(t, 2, q.maxAttempts)
	})
}
