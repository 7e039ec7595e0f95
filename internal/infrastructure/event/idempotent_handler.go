package event

import (
	"context"
	"sync/atomic"

	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/albazaar/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// IdempotencyKeyPrefix namespaces delivery markers in the shared store
const IdempotencyKeyPrefix = "storefront:event:"

// DeliveryRecorder receives the outcome of every delivery.
// *telemetry.StorefrontMetrics satisfies it.
type DeliveryRecorder interface {
	RecordEventDelivery(ctx context.Context, handler, eventType, result string)
}

// DeliveryCounts are in-process totals, handy in tests and debug logs
type DeliveryCounts struct {
	Delivered  atomic.Int64
	Duplicates atomic.Int64
	Failed     atomic.Int64
}

// IdempotentHandler hands each event ID to the wrapped handler at most
// once per TTL. A resumed checkout raises order.placed again with the same
// name-derived ID, so the wrapped Kafka publisher sees the order once.
//
// If the store cannot be reached the event is delivered anyway; a
// duplicate downstream is better than a lost order.
type IdempotentHandler struct {
	name     string
	handler  shared.EventHandler
	store    shared.IdempotencyStore
	config   shared.IdempotencyConfig
	logger   *zap.Logger
	counts   *DeliveryCounts
	recorder DeliveryRecorder
}

// IdempotentHandlerOption configures an IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig overrides shared.DefaultIdempotencyConfig
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.config = config }
}

// WithDeliveryCounts shares one set of totals between handlers
func WithDeliveryCounts(counts *DeliveryCounts) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.counts = counts }
}

// WithDeliveryRecorder reports outcomes as metrics
func WithDeliveryRecorder(recorder DeliveryRecorder) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.recorder = recorder }
}

// NewIdempotentHandler wraps handler. name scopes the markers, so two
// wrapped handlers sharing a store each see every event once.
func NewIdempotentHandler(
	name string,
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &IdempotentHandler{
		name:    name,
		handler: handler,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger.With(zap.String("handler", name)),
		counts:  &DeliveryCounts{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle delivers event unless its ID was already delivered by this handler
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	key := IdempotencyKeyPrefix + h.name + ":" + event.EventID().String()
	first, err := h.store.MarkProcessed(ctx, key, h.config.TTL)
	if err != nil {
		h.logger.Warn("Event dedup check failed, delivering anyway",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		first = true
	}
	if !first {
		h.counts.Duplicates.Add(1)
		h.observe(ctx, event, telemetry.ResultDuplicate)
		h.logger.Debug("Dropping repeated event",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()))
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.counts.Failed.Add(1)
		h.observe(ctx, event, telemetry.ResultError)
		// the next publish of this ID gets another try
		if relErr := h.store.Release(ctx, key); relErr != nil {
			h.logger.Warn("Failed to release event marker",
				zap.String("event_id", event.EventID().String()),
				zap.Error(relErr))
		}
		return err
	}

	h.counts.Delivered.Add(1)
	h.observe(ctx, event, telemetry.ResultSuccess)
	return nil
}

// Counts returns the handler's delivery totals
func (h *IdempotentHandler) Counts() *DeliveryCounts {
	return h.counts
}

func (h *IdempotentHandler) observe(ctx context.Context, event shared.DomainEvent, result string) {
	if h.recorder != nil {
		h.recorder.RecordEventDelivery(ctx, h.name, event.EventType(), result)
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
