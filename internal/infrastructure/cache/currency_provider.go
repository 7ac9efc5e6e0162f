package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/application/ports"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// tenantCurrency is the database row backing a tenant's currency configuration
type tenantCurrency struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_currency_code"`
	Code         string          `gorm:"size:8;not null;uniqueIndex:idx_tenant_currency_code"`
	IsMain       bool            `gorm:"not null;default:false"`
	ExchangeRate decimal.Decimal `gorm:"type:numeric(18,8);not null;default:1"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (tenantCurrency) TableName() string {
	return "tenant_currencies"
}

// CachedCurrencyProvider reads tenant currency configuration from the database
// and caches the result in Redis. Currency setups change rarely; a short TTL
// keeps cost allocation fast without a dedicated invalidation channel.
type CachedCurrencyProvider struct {
	db     *gorm.DB
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCurrencyProvider creates a new CachedCurrencyProvider
func NewCachedCurrencyProvider(db *gorm.DB, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedCurrencyProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedCurrencyProvider{db: db, client: client, ttl: ttl, logger: logger}
}

// GetCurrencies returns the currencies configured for a tenant
func (p *CachedCurrencyProvider) GetCurrencies(ctx context.Context, tenantID uuid.UUID) ([]ports.CurrencyInfo, error) {
	key := fmt.Sprintf("currency:%s", tenantID)

	if p.client != nil {
		cached, err := p.client.Get(ctx, key).Bytes()
		if err == nil {
			var infos []ports.CurrencyInfo
			if err := json.Unmarshal(cached, &infos); err == nil {
				return infos, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			p.logger.Warn("currency cache read failed", zap.Error(err))
		}
	}

	var rows []tenantCurrency
	if err := p.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	infos := make([]ports.CurrencyInfo, len(rows))
	for i, row := range rows {
		infos[i] = ports.CurrencyInfo{
			Code:         valueobject.Currency(row.Code),
			IsMain:       row.IsMain,
			ExchangeRate: row.ExchangeRate,
		}
	}

	if p.client != nil {
		if data, err := json.Marshal(infos); err == nil {
			if err := p.client.Set(ctx, key, data, p.ttl).Err(); err != nil {
				p.logger.Warn("currency cache write failed", zap.Error(err))
			}
		}
	}
	return infos, nil
}

// CostCurrency returns the tenant's main (cost) currency
func (p *CachedCurrencyProvider) CostCurrency(ctx context.Context, tenantID uuid.UUID) (valueobject.Currency, error) {
	infos, err := p.GetCurrencies(ctx, tenantID)
	if err != nil {
		return "", err
	}
	for _, info := range infos {
		if info.IsMain {
			return info.Code, nil
		}
	}
	return "", shared.NewIntegrityError("NO_MAIN_CURRENCY", "tenant has no main currency configured")
}

// RateTable returns the tenant's exchange rates keyed by target currency
func (p *CachedCurrencyProvider) RateTable(ctx context.Context, tenantID uuid.UUID) (valueobject.RateTable, error) {
	infos, err := p.GetCurrencies(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	table := make(valueobject.RateTable, len(infos))
	for _, info := range infos {
		table[info.Code] = info.ExchangeRate
	}
	return table, nil
}

// Invalidate drops the cached currency configuration for a tenant
func (p *CachedCurrencyProvider) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	if p.client == nil {
		return nil
	}
	return p.client.Del(ctx, fmt.Sprintf("currency:%s", tenantID)).Err()
}

// Ensure CachedCurrencyProvider implements CurrencyProvider
var _ ports.CurrencyProvider = (*CachedCurrencyProvider)(nil)
