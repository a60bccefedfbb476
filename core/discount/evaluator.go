// Package discount evaluates promotional codes: validity gates, scope, and application.
// A discount that does not apply is an expected outcome, reported as a nil result or
// a Verdict reason, never as an error.
package discount

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Omri-Jukin/Portfolio-sub003/core/scope"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
)

// Reason explains why a discount does not apply
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonInactive   Reason = "inactive"
	ReasonNotStarted Reason = "not_started"
	ReasonExpired    Reason = "expired"
	ReasonExhausted  Reason = "exhausted"
	ReasonOutOfScope Reason = "out_of_scope"
	ReasonUserLimit  Reason = "user_limit"

	// ReasonUnknownCode is reported by callers that could not find the code at all
	ReasonUnknownCode Reason = "unknown_code"
)

// Verdict is the outcome of the validity gates
type Verdict struct {
	Code  string `json:"code"`
	Valid bool   `json:"valid"`

	Reason Reason `json:"reason,omitempty"`

	// FailedRule names the scope rule that rejected the selection
	FailedRule string `json:"failed_rule,omitempty"`
}

var hundred = decimal.NewFromInt(100)

// Evaluator checks and applies discounts relative to a clock
type Evaluator struct {
	now func() time.Time
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithClock sets the evaluation-time source
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

// NewEvaluator creates an evaluator using the wall clock by default
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check runs the gates in order and reports the first that fails
func (e *Evaluator) Check(d *types.Discount, sel types.ScopeSelection) Verdict {
	v := Verdict{Code: d.Code}
	now := e.now()

	switch {
	case !d.IsActive:
		v.Reason = ReasonInactive
	case d.StartsAt != nil && d.StartsAt.After(now):
		v.Reason = ReasonNotStarted
	case d.EndsAt != nil && d.EndsAt.Before(now):
		v.Reason = ReasonExpired
	case d.MaxUses != nil && d.UsedCount >= *d.MaxUses:
		v.Reason = ReasonExhausted
	default:
		if failed, ok := scope.Explain(d.AppliesTo, sel); !ok {
			v.Reason = ReasonOutOfScope
			v.FailedRule = failed
		}
	}

	v.Valid = v.Reason == ReasonNone
	return v
}

// ApplyDiscount returns the discounted result, or nil when any gate fails
func (e *Evaluator) ApplyDiscount(d *types.Discount, total decimal.Decimal, sel types.ScopeSelection) *types.DiscountResult {
	if !e.Check(d, sel).Valid {
		return nil
	}
	result, ok := Apply(d.Type, d.Amount, total)
	if !ok {
		return nil
	}
	return &result
}

// ApplyDiscount evaluates d against the wall clock
func ApplyDiscount(d *types.Discount, total decimal.Decimal, sel types.ScopeSelection) *types.DiscountResult {
	return NewEvaluator().ApplyDiscount(d, total, sel)
}

// Apply computes a discount on total without any validity checks.
// The discounted total is floored at zero. ok is false for unknown types.
func Apply(kind types.DiscountType, amount, total decimal.Decimal) (types.DiscountResult, bool) {
	var discounted decimal.Decimal
	switch kind {
	case types.DiscountPercent:
		discounted = total.Mul(decimal.NewFromInt(1).Sub(amount.Div(hundred)))
	case types.DiscountFixed:
		discounted = total.Sub(amount)
	default:
		return types.DiscountResult{}, false
	}

	if discounted.IsNegative() {
		discounted = decimal.Zero
	}

	return types.DiscountResult{
		DiscountedTotal: discounted,
		DiscountAmount:  total.Sub(discounted),
		DiscountType:    kind,
		OriginalTotal:   total,
	}, true
}

// NormalizeCode returns the canonical stored form of a discount code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
