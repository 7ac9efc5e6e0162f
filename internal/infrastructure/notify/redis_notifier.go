// Package notify delivers user-facing notifications. Delivery is best-effort:
// the outbox retries transient failures, but a lost notification never rolls
// back a business change.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wms/backend/internal/application/ports"
	"go.uber.org/zap"
)

// SettingNotificationsEnabled is the per-tenant toggle for user notifications
const SettingNotificationsEnabled = "notifications.enabled"

// RedisNotifier publishes notifications on a per-tenant Redis channel. The
// websocket gateway subscribes to these channels and fans the messages out to
// the tenant's connected users.
type RedisNotifier struct {
	client   *redis.Client
	settings ports.SettingsProvider
	logger   *zap.Logger
}

// NewRedisNotifier creates a new RedisNotifier. The settings provider is
// optional; without one every tenant is treated as subscribed.
func NewRedisNotifier(client *redis.Client, settings ports.SettingsProvider, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, settings: settings, logger: logger}
}

// notification is the wire envelope published to the channel
type notification struct {
	EventType string          `json:"eventType"`
	Payload   json.RawMessage `json:"payload"`
	SentAt    time.Time       `json:"sentAt"`
}

// Notify sends an event to the tenant's connected users
func (n *RedisNotifier) Notify(ctx context.Context, tenantID uuid.UUID, eventType string, payload any) error {
	if n.settings != nil {
		enabled, err := n.settings.Get(ctx, tenantID, SettingNotificationsEnabled, "true")
		if err == nil && enabled != "true" {
			n.logger.Debug("notifications disabled for tenant", zap.String("tenant_id", tenantID.String()))
			return nil
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	envelope, err := json.Marshal(notification{
		EventType: eventType,
		Payload:   raw,
		SentAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification envelope: %w", err)
	}

	channel := fmt.Sprintf("notifications:%s", tenantID)
	if err := n.client.Publish(ctx, channel, envelope).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	n.logger.Debug("notification published",
		zap.String("channel", channel),
		zap.String("event_type", eventType),
	)
	return nil
}

// Ensure RedisNotifier implements Notifier
var _ ports.Notifier = (*RedisNotifier)(nil)
