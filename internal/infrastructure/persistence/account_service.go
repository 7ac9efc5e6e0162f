package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/application/ports"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// fundingAccount is the database row backing a tenant's funding account
type fundingAccount struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name            string          `gorm:"size:128;not null"`
	BalanceAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	BalanceCurrency string          `gorm:"size:8;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (fundingAccount) TableName() string {
	return "funding_accounts"
}

// fundingAccountEntry is one movement against a funding account
type fundingAccountEntry struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Currency  string          `gorm:"size:8;not null"`
	Reference string          `gorm:"size:64;not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (fundingAccountEntry) TableName() string {
	return "funding_account_entries"
}

// GormAccountService debits funding accounts. The balance row is locked for
// the duration of the debit, so concurrent receipts against the same account
// serialize instead of overdrawing.
type GormAccountService struct {
	db *gorm.DB
}

// NewGormAccountService creates a new GormAccountService
func NewGormAccountService(db *gorm.DB) *GormAccountService {
	return &GormAccountService{db: db}
}

// Debit withdraws the amount from the account
func (s *GormAccountService) Debit(ctx context.Context, tenantID, accountID uuid.UUID, amount valueobject.Money, reference string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account fundingAccount
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND tenant_id = ?", accountID, tenantID).
			First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		if err != nil {
			return err
		}

		if account.BalanceCurrency != string(amount.Currency()) {
			return shared.NewIntegrityError("CURRENCY_MISMATCH",
				fmt.Sprintf("account %s holds %s, debit requested in %s",
					account.Name, account.BalanceCurrency, amount.Currency()))
		}
		if account.BalanceAmount.LessThan(amount.Amount()) {
			return shared.NewInsufficiencyError("INSUFFICIENT_FUNDS",
				fmt.Sprintf("account %s balance %s is below the requested %s",
					account.Name, account.BalanceAmount, amount.Amount()))
		}

		account.BalanceAmount = account.BalanceAmount.Sub(amount.Amount())
		account.UpdatedAt = time.Now()
		if err := tx.Save(&account).Error; err != nil {
			return err
		}

		entry := fundingAccountEntry{
			ID:        uuid.New(),
			AccountID: account.ID,
			Amount:    amount.Amount().Neg(),
			Currency:  string(amount.Currency()),
			Reference: reference,
			CreatedAt: time.Now(),
		}
		return tx.Create(&entry).Error
	})
}

// Ensure GormAccountService implements AccountService
var _ ports.AccountService = (*GormAccountService)(nil)
