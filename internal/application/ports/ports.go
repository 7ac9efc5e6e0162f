// Package ports declares the contracts of external collaborators the core
// depends on. Their implementations live in infrastructure; the core consumes
// them read-only (currency, settings, periods) or fire-and-forget (accounts,
// notifications).
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// CurrencyInfo describes one currency configured for a tenant
type CurrencyInfo struct {
	Code         valueobject.Currency
	IsMain       bool
	ExchangeRate decimal.Decimal
}

// CurrencyProvider supplies per-tenant currency configuration. Implementations
// cache aggressively; the data is read-only and eventually consistent.
type CurrencyProvider interface {
	// GetCurrencies returns the currencies configured for a tenant
	GetCurrencies(ctx context.Context, tenantID uuid.UUID) ([]CurrencyInfo, error)
	// CostCurrency returns the tenant's main (cost) currency
	CostCurrency(ctx context.Context, tenantID uuid.UUID) (valueobject.Currency, error)
	// RateTable returns the tenant's exchange rates keyed by target currency
	RateTable(ctx context.Context, tenantID uuid.UUID) (valueobject.RateTable, error)
}

// SettingsProvider supplies per-tenant configuration key/value pairs
type SettingsProvider interface {
	// Get returns a setting value, or the fallback when the key is absent
	Get(ctx context.Context, tenantID uuid.UUID, key, fallback string) (string, error)
}

// AccountService is the funding/account module. The core calls Debit when a
// goods receipt specifies a funding account; it does not own balances.
type AccountService interface {
	// Debit withdraws the amount from the account. The implementation locks
	// the balance row; an insufficient balance returns an error.
	Debit(ctx context.Context, tenantID, accountID uuid.UUID, amount valueobject.Money, reference string) error
}

// OrderStatusProvider answers whether a dispatch's parent order is closed.
// A dispatch tied to a closed order cannot be stock-reversed automatically.
type OrderStatusProvider interface {
	// IsOrderClosed reports whether a sales order is closed
	IsOrderClosed(ctx context.Context, orderID uuid.UUID) (bool, error)
	// IsProductionOrderClosed reports whether a production order is closed
	IsProductionOrderClosed(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// ObjectStorage stores binary attachments (invoices, delivery notes)
type ObjectStorage interface {
	// Put stores an object under the given key
	Put(ctx context.Context, key, contentType string, body []byte) error
	// Delete removes an object
	Delete(ctx context.Context, key string) error
	// PresignedURL returns a time-limited download URL for an object
	PresignedURL(ctx context.Context, key string, expirySeconds int64) (string, error)
}

// Notifier delivers best-effort notifications after commit. Failures are
// logged, never propagated into the business transaction.
type Notifier interface {
	// Notify sends an event to the tenant's connected users
	Notify(ctx context.Context, tenantID uuid.UUID, eventType string, payload any) error
}
