package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/errors"
)

// Validate is the loader contract: whoever supplies a PricingModel must call it and
// refuse to serve the model on error. Whole missing tables and out-of-domain values
// fail here; individual missing keys are left to the calculator's defaults.
func Validate(m *types.PricingModel) error {
	if m == nil {
		return errors.Config("pricing model is nil")
	}

	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(m.ProjectTypes) == 0 {
		add("no project types defined")
	}
	if len(m.MultiplierGroups) == 0 {
		add("no multiplier groups defined")
	}

	seen := make(map[string]bool)
	for _, pt := range m.ProjectTypes {
		if pt.Key == "" {
			add("project type with empty key")
		} else if seen[pt.Key] {
			add("duplicate project type %q", pt.Key)
		}
		seen[pt.Key] = true
		if pt.BaseRate.IsNegative() {
			add("project type %q has negative base rate", pt.Key)
		}
	}

	for _, o := range m.BaseRateOverrides {
		if o.BaseRate.IsNegative() {
			add("override %s/%s has negative base rate", o.ProjectTypeKey, o.ClientTypeKey)
		}
	}

	seen = make(map[string]bool)
	for _, f := range m.Features {
		if f.Key == "" {
			add("feature with empty key")
		} else if seen[f.Key] {
			add("duplicate feature %q", f.Key)
		}
		seen[f.Key] = true
		if f.Cost.IsNegative() {
			add("feature %q has negative cost", f.Key)
		}
	}

	seen = make(map[string]bool)
	for _, g := range m.MultiplierGroups {
		if g.Key == "" {
			add("multiplier group with empty key")
		} else if seen[g.Key] {
			add("duplicate multiplier group %q", g.Key)
		}
		seen[g.Key] = true
		if len(g.Options) == 0 {
			add("multiplier group %q has no options", g.Key)
		}

		options := make(map[string]bool)
		for _, o := range g.Options {
			if options[o.Key] {
				add("duplicate option %q in group %q", o.Key, g.Key)
			}
			options[o.Key] = true
			if !o.Value.IsPositive() {
				add("option %s.%s must have a positive value", g.Key, o.Key)
			}
		}
	}

	if m.Meta.PageCostPerUnit.IsNegative() {
		add("page cost per unit is negative")
	}
	if m.Meta.RangePercent.IsNegative() || m.Meta.RangePercent.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		add("range percent %s is outside [0,1)", m.Meta.RangePercent)
	}
	if m.Meta.DefaultCurrency == "" {
		add("default currency is not set")
	}

	return problemsError("invalid pricing model", problems)
}

// ValidateDiscount checks a discount record before it is served
func ValidateDiscount(d *types.Discount) error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if d.Code == "" {
		add("discount code is empty")
	}
	if !d.Type.IsValid() {
		add("unknown discount type %q", d.Type)
	}
	if d.Amount.IsNegative() {
		add("discount amount is negative")
	}
	if d.MaxUses != nil && *d.MaxUses < 0 {
		add("max uses is negative")
	}
	if d.UsedCount < 0 {
		add("used count is negative")
	}
	if d.StartsAt != nil && d.EndsAt != nil && d.EndsAt.Before(*d.StartsAt) {
		add("discount ends before it starts")
	}

	if err := problemsError("invalid discount", problems); err != nil {
		return err.(*errors.Error).WithContext("code", d.Code)
	}
	return nil
}

func problemsError(prefix string, problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return errors.Newf(errors.TypeConfig, "%s: %s", prefix, strings.Join(problems, "; ")).
		WithContext("problems", problems)
}
