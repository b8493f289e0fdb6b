package payment

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingReference = errors.New("payment: reference is required")
	ErrInvalidAmount    = errors.New("payment: amount must be greater than zero")
	ErrGateway          = errors.New("payment: gateway unavailable")
	ErrDeclined         = errors.New("payment: transaction not successful")
	ErrInvalidMetadata  = errors.New("payment: invalid metadata")
	ErrAmountMismatch   = errors.New("payment: paid amount does not match order total")
	// ErrReconciliationInProgress means another callback holds the reference.
	ErrReconciliationInProgress = errors.New("payment: reconciliation already in progress")
)

// Tolerance is the largest difference between computed and paid totals that
// still counts as a match.
var Tolerance = decimal.New(1, -2)

type InitializeRequest struct {
	Email       string
	AmountMinor int64
	Metadata    json.RawMessage
	CallbackURL string
}

type Authorization struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// Verification is the gateway's account of a transaction. PaidAmount is in
// major units.
type Verification struct {
	Success       bool
	Status        string
	Reference     string
	PaidAmount    decimal.Decimal
	Currency      string
	CustomerEmail string
	Metadata      json.RawMessage
}

// Gateway is the payment provider. Neither call is retried.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (Authorization, error)
	Verify(ctx context.Context, reference string) (Verification, error)
}

// ToMinor converts a major-unit amount to the integer minor units gateways charge.
func ToMinor(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinor converts gateway minor units back to major units.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// AmountsMatch reports whether paid is within Tolerance of computed.
func AmountsMatch(computed, paid decimal.Decimal) bool {
	return computed.Sub(paid).Abs().LessThanOrEqual(Tolerance)
}
