package order

import (
	"context"
	"slices"
	"time"

	"github.com/albazaar/storefront/internal/domain/shared/valueobject"
)

// Step is one stage of a checkout submission
type Step string

const (
	StepCreateOrder      Step = "create_order"
	StepSendConfirmation Step = "send_confirmation"
	StepSaveInfo         Step = "save_info"
	StepRefreshCart      Step = "refresh_cart"
)

// Journal records the progress of one checkout attempt so that a retry
// with the same checkout id resumes at the first incomplete step.
type Journal struct {
	CheckoutID string             `json:"checkout_id"`
	SessionID  string             `json:"session_id"`
	Steps      []Step             `json:"steps"`
	Done       []Step             `json:"done"`
	Order      *PlaceOrderRequest `json:"order,omitempty"`
	Tier       ShippingTier       `json:"tier,omitempty"`
	Completed  bool               `json:"completed"`
	LastError  string             `json:"last_error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// PlanSteps returns the steps of a submission in execution order
func PlanSteps(saveInfo bool) []Step {
	steps := []Step{StepCreateOrder, StepSendConfirmation}
	if saveInfo {
		steps = append(steps, StepSaveInfo)
	}
	return append(steps, StepRefreshCart)
}

// NewJournal starts a journal for a checkout attempt
func NewJournal(checkoutID, sessionID string, saveInfo bool, now time.Time) *Journal {
	return &Journal{
		CheckoutID: checkoutID,
		SessionID:  sessionID,
		Steps:      PlanSteps(saveInfo),
		Done:       []Step{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsDone reports whether step already completed
func (j *Journal) IsDone(step Step) bool {
	return slices.Contains(j.Done, step)
}

// Pending returns the steps still to run, in order
func (j *Journal) Pending() []Step {
	var pending []Step
	for _, s := range j.Steps {
		if !j.IsDone(s) {
			pending = append(pending, s)
		}
	}
	return pending
}

// Next returns the first incomplete step
func (j *Journal) Next() (Step, bool) {
	for _, s := range j.Steps {
		if !j.IsDone(s) {
			return s, true
		}
	}
	return "", false
}

// MarkDone records step as completed
func (j *Journal) MarkDone(step Step, now time.Time) {
	if !j.IsDone(step) {
		j.Done = append(j.Done, step)
	}
	j.LastError = ""
	j.Completed = len(j.Pending()) == 0
	j.UpdatedAt = now
}

// MarkFailed records the failure message of the current step
func (j *Journal) MarkFailed(message string, now time.Time) {
	j.LastError = message
	j.UpdatedAt = now
}

// Total returns the order total, once the order was assembled
func (j *Journal) Total() valueobject.Money {
	if j.Order == nil {
		return valueobject.ZeroWon()
	}
	return valueobject.Won(j.Order.Total)
}

// JournalStore persists checkout journals
type JournalStore interface {
	Get(ctx context.Context, checkoutID string) (*Journal, error)
	Save(ctx context.Context, journal *Journal, ttl time.Duration) error
}
