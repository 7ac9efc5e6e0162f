// Package storage provides object storage implementations for receipt
// document attachments.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/wms/backend/internal/application/ports"
)

// StubObjectStorage is a placeholder implementation used when storage is
// disabled in configuration. Uploads succeed without persisting anything.
type StubObjectStorage struct {
	// BaseURL is the base URL for generated download URLs
	BaseURL string
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
	}
}

// Put is a no-op stub that always succeeds
func (s *StubObjectStorage) Put(ctx context.Context, key, contentType string, body []byte) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	return nil
}

// Delete is a no-op stub that always succeeds
func (s *StubObjectStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	return nil
}

// PresignedURL returns a stub download URL
func (s *StubObjectStorage) PresignedURL(ctx context.Context, key string, expirySeconds int64) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(time.Duration(expirySeconds) * time.Second)
	return s.BaseURL + "/download/" + key + "?expires=" + expiresAt.Format(time.RFC3339), nil
}

// Ensure StubObjectStorage implements ObjectStorage
var _ ports.ObjectStorage = (*StubObjectStorage)(nil)
