package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when StorefrontMetrics is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Outcome labels recorded under the "result" attribute.
const (
	ResultSuccess    = "success"
	ResultRejected   = "rejected"
	ResultInvalid    = "invalid"
	ResultError      = "error"
	ResultInProgress = "in_progress"
	ResultEmpty      = "empty"
	ResultDuplicate  = "duplicate"
)

// StorefrontMetrics records login, cart and checkout activity.
// A nil *StorefrontMetrics is valid and records nothing.
type StorefrontMetrics struct {
	otpRequests          *Counter
	otpVerifications     *Counter
	logins               *Counter
	cartMutations        *Counter
	checkouts            *Counter
	checkoutStepDuration *Histogram
	orderTotal           *Histogram
	sessionInvalidations *Counter
	countdownStreams     *UpDownCounter
	eventDeliveries      *Counter
}

// NewStorefrontMetrics registers every storefront instrument on meter.
func NewStorefrontMetrics(meter metric.Meter) (*StorefrontMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	sm := &StorefrontMetrics{}
	var err error

	if sm.otpRequests, err = NewCounter(meter,
		"storefront_otp_requests_total", "OTP send requests by result", "{requests}"); err != nil {
		return nil, err
	}
	if sm.otpVerifications, err = NewCounter(meter,
		"storefront_otp_verifications_total", "OTP verification attempts by result", "{attempts}"); err != nil {
		return nil, err
	}
	if sm.logins, err = NewCounter(meter,
		"storefront_logins_total", "Completed logins", "{logins}"); err != nil {
		return nil, err
	}
	if sm.cartMutations, err = NewCounter(meter,
		"storefront_cart_mutations_total", "Cart add/increase/decrease/delete calls", "{mutations}"); err != nil {
		return nil, err
	}
	if sm.checkouts, err = NewCounter(meter,
		"storefront_checkouts_total", "Checkout submissions by result", "{checkouts}"); err != nil {
		return nil, err
	}
	if sm.checkoutStepDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "storefront_checkout_step_duration_seconds",
		Description: "Duration of each checkout step",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if sm.orderTotal, err = NewHistogram(meter, HistogramOpts{
		Name:        "storefront_order_total_won",
		Description: "Order totals including shipping",
		Unit:        "KRW",
		Boundaries:  OrderTotalBuckets,
	}); err != nil {
		return nil, err
	}
	if sm.sessionInvalidations, err = NewCounter(meter,
		"storefront_session_invalidations_total", "Sessions cleared by logout or backend 401", "{sessions}"); err != nil {
		return nil, err
	}
	if sm.countdownStreams, err = NewUpDownCounter(meter,
		"storefront_countdown_streams_active", "Open OTP countdown SSE streams", "{streams}"); err != nil {
		return nil, err
	}
	if sm.eventDeliveries, err = NewCounter(meter,
		"storefront_event_deliveries_total", "Event deliveries to deduplicated handlers", "{events}"); err != nil {
		return nil, err
	}

	return sm, nil
}

// RecordOTPRequest counts one OTP send attempt.
func (sm *StorefrontMetrics) RecordOTPRequest(ctx context.Context, result string) {
	if sm == nil {
		return
	}
	sm.otpRequests.Inc(ctx, AttrResult.String(result))
}

// RecordOTPVerification counts one OTP verification attempt.
func (sm *StorefrontMetrics) RecordOTPVerification(ctx context.Context, result string) {
	if sm == nil {
		return
	}
	sm.otpVerifications.Inc(ctx, AttrResult.String(result))
}

// RecordLogin counts a finished login, split by whether the address step ran.
func (sm *StorefrontMetrics) RecordLogin(ctx context.Context, addressCapture bool) {
	if sm == nil {
		return
	}
	sm.logins.Inc(ctx, AttrAddressCapture.Bool(addressCapture))
}

// RecordCartMutation counts one cart mutation.
func (sm *StorefrontMetrics) RecordCartMutation(ctx context.Context, op string, err error) {
	if sm == nil {
		return
	}
	sm.cartMutations.Inc(ctx, AttrCartOperation.String(op), AttrResult.String(resultOf(err)))
}

// RecordCheckout counts one checkout submission.
func (sm *StorefrontMetrics) RecordCheckout(ctx context.Context, result, tier string) {
	if sm == nil {
		return
	}
	sm.checkouts.Inc(ctx, AttrResult.String(result), AttrShippingTier.String(tier))
}

// RecordCheckoutStep records how long a checkout step took.
func (sm *StorefrontMetrics) RecordCheckoutStep(ctx context.Context, step string, d time.Duration, err error) {
	if sm == nil {
		return
	}
	sm.checkoutStepDuration.RecordDuration(ctx, d, AttrCheckoutStep.String(step), AttrResult.String(resultOf(err)))
}

// RecordOrderPlaced records the total of a placed order in won.
func (sm *StorefrontMetrics) RecordOrderPlaced(ctx context.Context, totalWon int64, tier string) {
	if sm == nil {
		return
	}
	sm.orderTotal.Record(ctx, float64(totalWon), AttrShippingTier.String(tier))
}

// RecordSessionInvalidated counts a session cleared for reason.
func (sm *StorefrontMetrics) RecordSessionInvalidated(ctx context.Context, reason string) {
	if sm == nil {
		return
	}
	sm.sessionInvalidations.Inc(ctx, AttrReason.String(reason))
}

// CountdownStreamOpened counts a newly opened countdown stream.
func (sm *StorefrontMetrics) CountdownStreamOpened(ctx context.Context) {
	if sm == nil {
		return
	}
	sm.countdownStreams.Add(ctx, 1)
}

// CountdownStreamClosed releases a stream counted by CountdownStreamOpened.
func (sm *StorefrontMetrics) CountdownStreamClosed(ctx context.Context) {
	if sm == nil {
		return
	}
	sm.countdownStreams.Add(ctx, -1)
}

// RecordEventDelivery counts one event handed to a deduplicated handler.
func (sm *StorefrontMetrics) RecordEventDelivery(ctx context.Context, handler, eventType, result string) {
	if sm == nil {
		return
	}
	sm.eventDeliveries.Inc(ctx, AttrEventHandler.String(handler), AttrEventType.String(eventType), AttrResult.String(result))
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
