package event

import (
	"context"

	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/order"
	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/albazaar/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MetricsHandler turns storefront events into business metrics and an
// audit log line each
type MetricsHandler struct {
	metrics *telemetry.StorefrontMetrics
	logger  *zap.Logger
}

// NewMetricsHandler creates a MetricsHandler. A nil metrics value only logs.
func NewMetricsHandler(metrics *telemetry.StorefrontMetrics, logger *zap.Logger) *MetricsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsHandler{metrics: metrics, logger: logger}
}

// EventTypes lists the events that carry business metrics
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		identity.EventTypeLoginCompleted,
		identity.EventTypeSessionInvalidated,
		order.EventTypeOrderPlaced,
	}
}

// Handle records the metric for event
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *identity.LoginCompletedEvent:
		h.metrics.RecordLogin(ctx, e.AddressCapture)
		h.logger.Info("login completed",
			zap.String("session_id", e.AggregateID()),
			zap.String("phone", identity.MaskPhone(e.Phone)),
		)
	case *identity.SessionInvalidatedEvent:
		h.metrics.RecordSessionInvalidated(ctx, e.Reason)
		h.logger.Info("session invalidated",
			zap.String("session_id", e.AggregateID()),
			zap.String("reason", e.Reason),
		)
	case *order.OrderPlacedEvent:
		h.metrics.RecordOrderPlaced(ctx, e.Total, string(e.ShippingTier))
		h.logger.Info("order placed",
			zap.String("checkout_id", e.AggregateID()),
			zap.Int64("total", e.Total),
			zap.Int("items", e.ItemCount),
			zap.String("shipping_tier", string(e.ShippingTier)),
		)
	default:
		h.logger.Debug("ignoring event", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*MetricsHandler)(nil)
