// Package event stages domain events into the transactional outbox so they
// are delivered only after the business change commits.
package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wms/backend/internal/domain/shared"
)

// Stage serializes the pending events of an aggregate into outbox entries and
// clears them. Must be called inside the same transaction as the aggregate's
// save.
func Stage(ctx context.Context, outbox shared.OutboxRepository, agg shared.AggregateRoot) error {
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", ev.EventType(), err)
		}
		entries = append(entries, shared.NewOutboxEntry(ev.TenantID(), ev, payload))
	}

	if err := outbox.Save(ctx, entries...); err != nil {
		return err
	}
	agg.ClearDomainEvents()
	return nil
}
