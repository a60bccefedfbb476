// Package types - Discount types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType is how a discount amount is interpreted
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// IsValid checks if the discount type is known
func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountPercent, DiscountFixed:
		return true
	default:
		return false
	}
}

// ScopeRules decide which selections a discount applies to.
// An empty list means no restriction on that dimension.
type ScopeRules struct {
	ProjectTypes       []string `json:"project_types,omitempty"`
	Features           []string `json:"features,omitempty"`
	ClientTypes        []string `json:"client_types,omitempty"`
	ExcludeClientTypes []string `json:"exclude_client_types,omitempty"`
}

// Discount is an administrator-managed promotional code
type Discount struct {
	// Code is unique and stored upper-cased
	Code string `json:"code"`

	Type     DiscountType    `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency,omitempty"`

	AppliesTo ScopeRules `json:"applies_to"`

	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	// MaxUses is nil when uses are unlimited
	MaxUses   *int `json:"max_uses,omitempty"`
	UsedCount int  `json:"used_count"`

	// PerUserLimit is enforced by whoever tracks redemptions; <= 0 is unlimited
	PerUserLimit int  `json:"per_user_limit"`
	IsActive     bool `json:"is_active"`
}

// UserLimitReached reports whether a user with the given number of past
// redemptions may not use the code again
func (d *Discount) UserLimitReached(uses int) bool {
	return d.PerUserLimit > 0 && uses >= d.PerUserLimit
}

// Descriptor returns the type/amount pair the calculator consumes
func (d *Discount) Descriptor() *DiscountDescriptor {
	return &DiscountDescriptor{Type: d.Type, Amount: d.Amount}
}

// DiscountDescriptor is an already-validated discount handed to the calculator
type DiscountDescriptor struct {
	Type   DiscountType    `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// DiscountResult is the outcome of applying a discount to a total
type DiscountResult struct {
	DiscountedTotal decimal.Decimal `json:"discounted_total"`

	// DiscountAmount is what was actually removed; less than the nominal
	// amount when the result was floored at zero
	DiscountAmount decimal.Decimal `json:"discount_amount"`

	DiscountType  DiscountType    `json:"discount_type"`
	OriginalTotal decimal.Decimal `json:"original_total"`
}
