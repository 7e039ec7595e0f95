package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	KRW Currency = "KRW" // Korean Won (default)
	USD Currency = "USD"
)

// DefaultCurrency is the currency every storefront price is quoted in
const DefaultCurrency = KRW

// ErrCurrencyMismatch is returned when combining amounts in different currencies
var ErrCurrencyMismatch = errors.New("money: currency mismatch")

// krwPrinter formats numbers with ko-KR digit grouping
var krwPrinter = message.NewPrinter(language.Korean)

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// Won creates Money in KRW from a whole number of won
func Won(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount), currency: KRW}
}

// WonFromDecimal creates Money in KRW from a decimal amount
func WonFromDecimal(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: KRW}
}

// ZeroWon returns zero KRW
func ZeroWon() Money {
	return Won(0)
}

// Amount returns the underlying decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency, defaulting to KRW for the zero value
func (m Money) Currency() Currency {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Add returns the sum of two amounts in the same currency
func (m Money) Add(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency(), other.Currency())
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.Currency()}, nil
}

// MustAdd is Add for amounts known to share a currency
func (m Money) MustAdd(other Money) Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

// GreaterThanOrEqual compares two amounts in the same currency
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if m.Currency() != other.Currency() {
		return false, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency(), other.Currency())
	}
	return m.amount.GreaterThanOrEqual(other.amount), nil
}

// Int64 returns the amount rounded to whole units
func (m Money) Int64() int64 {
	return m.amount.Round(0).IntPart()
}

// String returns the plain decimal representation
func (m Money) String() string {
	return m.amount.String()
}

// Format renders the amount with ko-KR grouping, e.g. "3,500₩"
func (m Money) Format() string {
	switch m.Currency() {
	case KRW:
		return krwPrinter.Sprintf("%d₩", m.Int64())
	default:
		return krwPrinter.Sprintf("%s %s", m.amount.StringFixed(2), m.Currency())
	}
}

// MarshalJSON renders the amount as a JSON number with its formatted label
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount    json.Number `json:"amount"`
		Currency  Currency    `json:"currency"`
		Formatted string      `json:"formatted"`
	}{
		Amount:    json.Number(m.amount.String()),
		Currency:  m.Currency(),
		Formatted: m.Format(),
	})
}
