package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountingPeriod identifies the accounting window ledger rows are stamped
// with. Whether a correction may compensate within the original period or must
// roll over into the current one depends on the period still being open.
type AccountingPeriod struct {
	ID            uuid.UUID
	PriceSystemID uuid.UUID
	StartsAt      time.Time
	EndsAt        *time.Time
}

// IsOpen returns true while the period accepts new ledger rows
func (p AccountingPeriod) IsOpen() bool {
	return p.EndsAt == nil || p.EndsAt.After(time.Now())
}

// AccountingPeriodProvider resolves accounting periods for a tenant. Backed by
// the billing system; cached per request by the application layer.
type AccountingPeriodProvider interface {
	// CurrentPeriod returns the open period for the tenant
	CurrentPeriod(ctx context.Context, tenantID uuid.UUID) (AccountingPeriod, error)
	// PeriodByID returns a period by its identifier
	PeriodByID(ctx context.Context, periodID uuid.UUID) (AccountingPeriod, error)
}
