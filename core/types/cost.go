// Package types - Cost breakdown types
package types

import "github.com/shopspring/decimal"

// PriceRange is the uncertainty band presented around a total
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// AppliedDiscount records the discount folded into a breakdown
type AppliedDiscount struct {
	Type DiscountType `json:"type"`

	// Amount is the nominal discount amount
	Amount decimal.Decimal `json:"amount"`

	// DiscountAmount is what was actually removed from the total
	DiscountAmount decimal.Decimal `json:"discount_amount"`

	DiscountedTotal decimal.Decimal `json:"discounted_total"`
}

// FallbackKind classifies a lookup that had to default
type FallbackKind string

const (
	FallbackProjectType FallbackKind = "project_type"
	FallbackFeature     FallbackKind = "feature"
	FallbackMultiplier  FallbackKind = "multiplier"
	FallbackDiscount    FallbackKind = "discount"
)

// Fallback documents a missing key that was replaced by a neutral default
type Fallback struct {
	Kind FallbackKind `json:"kind"`

	// Group is set for multiplier fallbacks
	Group string `json:"group,omitempty"`

	Key     string `json:"key"`
	Default string `json:"default"`
}

// CostBreakdown is the full itemized result of an estimate.
// Produced fresh per call; never mutated after construction.
type CostBreakdown struct {
	BaseCost         decimal.Decimal            `json:"base_cost"`
	PageCost         decimal.Decimal            `json:"page_cost"`
	FeatureCosts     map[string]decimal.Decimal `json:"feature_costs"`
	TotalFeatureCost decimal.Decimal            `json:"total_feature_cost"`

	ComplexityMultiplier decimal.Decimal `json:"complexity_multiplier"`
	TimelineMultiplier   decimal.Decimal `json:"timeline_multiplier"`
	TechStackMultiplier  decimal.Decimal `json:"tech_stack_multiplier"`
	ClientTypeMultiplier decimal.Decimal `json:"client_type_multiplier"`

	// Subtotal is the cost structure scaled by complexity only
	Subtotal decimal.Decimal `json:"subtotal"`

	// Total is the pre-discount total
	Total decimal.Decimal `json:"total"`

	// Range is computed from FinalTotal
	Range PriceRange `json:"range"`

	DiscountApplied *AppliedDiscount `json:"discount_applied,omitempty"`

	Currency Currency `json:"currency"`

	// Fallbacks lists every lookup that defaulted during calculation
	Fallbacks []Fallback `json:"fallbacks,omitempty"`
}

// FinalTotal returns the discounted total when a discount was applied,
// otherwise the pre-discount total
func (b *CostBreakdown) FinalTotal() decimal.Decimal {
	if b.DiscountApplied != nil {
		return b.DiscountApplied.DiscountedTotal
	}
	return b.Total
}

// Clone returns a deep copy; maps, slices and the applied discount are not shared
func (b *CostBreakdown) Clone() *CostBreakdown {
	if b == nil {
		return nil
	}
	c := *b
	if b.FeatureCosts != nil {
		c.FeatureCosts = make(map[string]decimal.Decimal, len(b.FeatureCosts))
		for k, v := range b.FeatureCosts {
			c.FeatureCosts[k] = v
		}
	}
	if b.DiscountApplied != nil {
		d := *b.DiscountApplied
		c.DiscountApplied = &d
	}
	if b.Fallbacks != nil {
		c.Fallbacks = append([]Fallback(nil), b.Fallbacks...)
	}
	return &c
}
