// Package types - Pricing model types
package types

import "github.com/shopspring/decimal"

// ProjectType defines the default price floor for a category of project
type ProjectType struct {
	Key         string          `json:"key"`
	DisplayName string          `json:"display_name"`
	BaseRate    decimal.Decimal `json:"base_rate"`
	Order       int             `json:"order"`
	IsActive    bool            `json:"is_active"`
}

// BaseRateOverride is a more specific base rate for a (project type, client type) pair.
// An empty ClientTypeKey means "no override" and is never matched.
type BaseRateOverride struct {
	ProjectTypeKey string          `json:"project_type_key"`
	ClientTypeKey  string          `json:"client_type_key,omitempty"`
	BaseRate       decimal.Decimal `json:"base_rate"`
	Order          int             `json:"order"`
	IsActive       bool            `json:"is_active"`
}

// Feature is an optional add-on with a flat additive cost
type Feature struct {
	Key         string          `json:"key"`
	DisplayName string          `json:"display_name"`
	Cost        decimal.Decimal `json:"cost"`
	Group       string          `json:"group,omitempty"`
	Order       int             `json:"order"`
	IsActive    bool            `json:"is_active"`
}

// MultiplierGroup is a named axis of price scaling
type MultiplierGroup struct {
	Key         string             `json:"key"`
	DisplayName string             `json:"display_name"`
	Order       int                `json:"order"`
	IsActive    bool               `json:"is_active"`
	Options     []MultiplierOption `json:"options"`
}

// MultiplierOption is one mutually exclusive choice within a group
type MultiplierOption struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`

	// IsFixed marks the neutral/default option. Informational only.
	IsFixed bool `json:"is_fixed"`

	DisplayName string `json:"display_name"`
	Order       int    `json:"order"`
	IsActive    bool   `json:"is_active"`
}

// PricingMeta holds model-wide pricing settings
type PricingMeta struct {
	// PageCostPerUnit is charged per page/unit
	PageCostPerUnit decimal.Decimal `json:"page_cost_per_unit"`

	// RangePercent drives the +/- band around the final total, in [0,1)
	RangePercent decimal.Decimal `json:"range_percent"`

	// DefaultCurrency is used when inputs carry no currency
	DefaultCurrency Currency `json:"default_currency"`

	// ProjectMinimums are consumed by callers, not by the calculator
	ProjectMinimums map[string]decimal.Decimal `json:"project_minimums,omitempty"`
}

// PricingModel is the complete, already-loaded pricing configuration
type PricingModel struct {
	// Version identifies the model content (used in cache keys)
	Version string `json:"version"`

	ProjectTypes      []ProjectType      `json:"project_types"`
	BaseRateOverrides []BaseRateOverride `json:"base_rate_overrides,omitempty"`
	Features          []Feature          `json:"features,omitempty"`
	MultiplierGroups  []MultiplierGroup  `json:"multiplier_groups"`
	Meta              PricingMeta        `json:"meta"`
}
