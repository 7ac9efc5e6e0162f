package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// accountingPeriod is the database row backing an accounting period. Periods
// are opened and closed by the billing side; this side only reads them.
type accountingPeriod struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	PriceSystemID uuid.UUID `gorm:"type:uuid;not null"`
	StartsAt      time.Time `gorm:"not null"`
	EndsAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (accountingPeriod) TableName() string {
	return "accounting_periods"
}

// GormAccountingPeriodProvider resolves accounting periods from the database
type GormAccountingPeriodProvider struct {
	db *gorm.DB
}

// NewGormAccountingPeriodProvider creates a new GormAccountingPeriodProvider
func NewGormAccountingPeriodProvider(db *gorm.DB) *GormAccountingPeriodProvider {
	return &GormAccountingPeriodProvider{db: db}
}

// CurrentPeriod returns the open period for the tenant
func (p *GormAccountingPeriodProvider) CurrentPeriod(ctx context.Context, tenantID uuid.UUID) (inventory.AccountingPeriod, error) {
	var row accountingPeriod
	err := p.db.WithContext(ctx).
		Where("tenant_id = ? AND ends_at IS NULL", tenantID).
		Order("starts_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return inventory.AccountingPeriod{}, shared.NewIntegrityError("NO_OPEN_PERIOD", "tenant has no open accounting period")
	}
	if err != nil {
		return inventory.AccountingPeriod{}, err
	}
	return toDomainPeriod(row), nil
}

// PeriodByID returns a period by its identifier
func (p *GormAccountingPeriodProvider) PeriodByID(ctx context.Context, periodID uuid.UUID) (inventory.AccountingPeriod, error) {
	var row accountingPeriod
	err := p.db.WithContext(ctx).First(&row, "id = ?", periodID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return inventory.AccountingPeriod{}, shared.ErrNotFound
	}
	if err != nil {
		return inventory.AccountingPeriod{}, err
	}
	return toDomainPeriod(row), nil
}

func toDomainPeriod(row accountingPeriod) inventory.AccountingPeriod {
	return inventory.AccountingPeriod{
		ID:            row.ID,
		PriceSystemID: row.PriceSystemID,
		StartsAt:      row.StartsAt,
		EndsAt:        row.EndsAt,
	}
}

// Ensure GormAccountingPeriodProvider implements AccountingPeriodProvider
var _ inventory.AccountingPeriodProvider = (*GormAccountingPeriodProvider)(nil)
