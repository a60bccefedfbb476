// Package estimate turns a pricing model and user selections into a cost breakdown.
//
// The calculation is pure and total: missing configuration never produces an error.
// Unknown project types cost 0, unknown features are omitted, and unknown multiplier
// groups or options scale by 1. Each such default is logged and listed in the
// breakdown's Fallbacks.
package estimate

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Omri-Jukin/Portfolio-sub003/core/discount"
	"github.com/Omri-Jukin/Portfolio-sub003/core/model"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/logging"
)

// Calculator computes estimates
type Calculator struct {
	logger *zap.Logger
}

// Option configures a Calculator
type Option func(*Calculator)

// WithLogger sets the logger that receives fallback warnings
func WithLogger(l *zap.Logger) Option {
	return func(c *Calculator) {
		c.logger = l
	}
}

// NewCalculator creates a calculator logging through the global logger by default
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{logger: logging.Named("estimate")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate indexes the model and estimates in one call
func Calculate(m *types.PricingModel, inputs types.CalculatorInputs, desc *types.DiscountDescriptor) *types.CostBreakdown {
	return NewCalculator().Estimate(model.NewCatalog(m), inputs, desc)
}

// Estimate computes the full breakdown.
//
// desc is an already-validated discount; temporal, usage and scope gates are the
// caller's job (see discount.Evaluator).
func (c *Calculator) Estimate(cat *model.Catalog, inputs types.CalculatorInputs, desc *types.DiscountDescriptor) *types.CostBreakdown {
	meta := cat.Meta()
	b := &types.CostBreakdown{
		FeatureCosts: make(map[string]decimal.Decimal),
		Currency:     meta.DefaultCurrency,
	}
	if inputs.Currency != "" {
		b.Currency = inputs.Currency
	}

	baseCost, fb := cat.BaseRate(inputs.ProjectTypeKey, inputs.ClientTypeKey)
	c.note(b, fb)
	b.BaseCost = baseCost

	units := inputs.NumUnits
	if units < 0 {
		units = 0
	}
	b.PageCost = meta.PageCostPerUnit.Mul(decimal.NewFromInt(int64(units)))

	b.TotalFeatureCost = decimal.Zero
	for _, key := range inputs.SelectedFeatureKeys {
		if _, counted := b.FeatureCosts[key]; counted {
			continue
		}
		f, ok := cat.Feature(key)
		if !ok {
			c.note(b, &types.Fallback{Kind: types.FallbackFeature, Key: key, Default: "0"})
			continue
		}
		b.FeatureCosts[key] = f.Cost
		b.TotalFeatureCost = b.TotalFeatureCost.Add(f.Cost)
	}

	b.ComplexityMultiplier = c.multiplier(b, cat, types.GroupComplexity, inputs.ComplexityKey)
	b.TimelineMultiplier = c.multiplier(b, cat, types.GroupTimeline, inputs.TimelineKey)
	b.TechStackMultiplier = c.multiplier(b, cat, types.GroupTech, inputs.TechKey)
	b.ClientTypeMultiplier = c.multiplier(b, cat, types.GroupClientType, inputs.ClientTypeKey)

	// Complexity compounds on the cost structure; the other three scale the result.
	b.Subtotal = b.BaseCost.Add(b.PageCost).Add(b.TotalFeatureCost).Mul(b.ComplexityMultiplier)
	b.Total = b.Subtotal.
		Mul(b.TimelineMultiplier).
		Mul(b.TechStackMultiplier).
		Mul(b.ClientTypeMultiplier)

	if desc != nil {
		if result, ok := discount.Apply(desc.Type, desc.Amount, b.Total); ok {
			b.DiscountApplied = &types.AppliedDiscount{
				Type:            desc.Type,
				Amount:          desc.Amount,
				DiscountAmount:  result.DiscountAmount,
				DiscountedTotal: result.DiscountedTotal,
			}
		} else {
			c.note(b, &types.Fallback{Kind: types.FallbackDiscount, Key: string(desc.Type), Default: "none"})
		}
	}

	b.Range = Range(b.FinalTotal(), meta.RangePercent)
	return b
}

func (c *Calculator) multiplier(b *types.CostBreakdown, cat *model.Catalog, group, option string) decimal.Decimal {
	v, fb := cat.Multiplier(group, option)
	c.note(b, fb)
	return v
}

func (c *Calculator) note(b *types.CostBreakdown, fb *types.Fallback) {
	if fb == nil {
		return
	}
	b.Fallbacks = append(b.Fallbacks, *fb)
	c.logger.Warn("pricing lookup defaulted",
		zap.String("kind", string(fb.Kind)),
		zap.String("group", fb.Group),
		zap.String("key", fb.Key),
		zap.String("default", fb.Default),
	)
}
