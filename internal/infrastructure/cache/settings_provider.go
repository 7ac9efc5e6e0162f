package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wms/backend/internal/application/ports"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// tenantSetting is the database row backing a tenant configuration key
type tenantSetting struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_setting_key"`
	Key       string    `gorm:"size:128;not null;uniqueIndex:idx_tenant_setting_key"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (tenantSetting) TableName() string {
	return "tenant_settings"
}

// CachedSettingsProvider reads per-tenant settings from the database with a
// Redis read-through cache.
type CachedSettingsProvider struct {
	db     *gorm.DB
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSettingsProvider creates a new CachedSettingsProvider
func NewCachedSettingsProvider(db *gorm.DB, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSettingsProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedSettingsProvider{db: db, client: client, ttl: ttl, logger: logger}
}

// Get returns a setting value, or the fallback when the key is absent
func (p *CachedSettingsProvider) Get(ctx context.Context, tenantID uuid.UUID, key, fallback string) (string, error) {
	cacheKey := fmt.Sprintf("setting:%s:%s", tenantID, key)

	if p.client != nil {
		value, err := p.client.Get(ctx, cacheKey).Result()
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, redis.Nil) {
			p.logger.Warn("settings cache read failed", zap.Error(err))
		}
	}

	var row tenantSetting
	err := p.db.WithContext(ctx).
		Where("tenant_id = ? AND key = ?", tenantID, key).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}

	if p.client != nil {
		if err := p.client.Set(ctx, cacheKey, row.Value, p.ttl).Err(); err != nil {
			p.logger.Warn("settings cache write failed", zap.Error(err))
		}
	}
	return row.Value, nil
}

// Invalidate drops a cached setting
func (p *CachedSettingsProvider) Invalidate(ctx context.Context, tenantID uuid.UUID, key string) error {
	if p.client == nil {
		return nil
	}
	return p.client.Del(ctx, fmt.Sprintf("setting:%s:%s", tenantID, key)).Err()
}

// Ensure CachedSettingsProvider implements SettingsProvider
var _ ports.SettingsProvider = (*CachedSettingsProvider)(nil)
