// Package hclmodel loads pricing models and discount codes from HCL or JSON files.
//
// A file looks like:
//
//	meta {
//	  page_cost_per_unit = 750
//	  range_percent      = 0.18
//	  default_currency   = "USD"
//	  project_minimums   = { landing = 8500 }
//	}
//
//	project_type "landing" {
//	  base_rate = 9000
//	}
//
//	base_rate_override "webapp" "startup" {
//	  base_rate = 21000
//	}
//
//	multiplier_group "complexity" {
//	  option "standard" {
//	    value = 1
//	    fixed = true
//	  }
//	}
//
//	discount "SPRING" {
//	  type   = "percent"
//	  amount = var.spring_percent
//	  applies_to {
//	    exclude_client_types = ["enterprise"]
//	  }
//	}
//
// Files ending in .json use HCL's JSON syntax for the same structure.
package hclmodel

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"

	"github.com/Omri-Jukin/Portfolio-sub003/core/discount"
	"github.com/Omri-Jukin/Portfolio-sub003/core/model"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/errors"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/logging"
)

// Loader decodes pricing files
type Loader struct {
	variables       map[string]string
	defaultCurrency types.Currency
	logger          *zap.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithVariables exposes values to files as var.<name>
func WithVariables(vars map[string]string) Option {
	return func(l *Loader) {
		l.variables = vars
	}
}

// WithDefaultCurrency sets the currency used when the meta block names none
func WithDefaultCurrency(c types.Currency) Option {
	return func(l *Loader) {
		if c != "" {
			l.defaultCurrency = c
		}
	}
}

// WithLogger sets the loader logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		defaultCurrency: types.CurrencyUSD,
		logger:          logging.Named("hclmodel"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads and decodes a pricing file
func (l *Loader) LoadFile(path string) (*Bundle, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("pricing file", path)
		}
		return nil, errors.Wrap(errors.TypeConfig, "failed to read pricing file", err).WithContext("path", path)
	}
	return l.Decode(path, src)
}

// Decode parses src; the filename suffix selects HCL or JSON syntax.
// The model and every discount are validated before a bundle is returned.
func (l *Loader) Decode(filename string, src []byte) (*Bundle, error) {
	var file fileSchema
	if err := hclsimple.Decode(filename, src, l.evalContext(), &file); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to decode pricing file", err).WithContext("path", filename)
	}

	m, err := convertModel(&file, l.defaultCurrency)
	if err != nil {
		return nil, err
	}
	if m.Version == "" {
		sum := sha256.Sum256(src)
		m.Version = hex.EncodeToString(sum[:])[:12]
	}
	if err := model.Validate(m); err != nil {
		return nil, err
	}

	discounts := make(map[string]*types.Discount, len(file.Discounts))
	for _, block := range file.Discounts {
		d, err := convertDiscount(block)
		if err != nil {
			return nil, err
		}
		if err := model.ValidateDiscount(d); err != nil {
			return nil, err
		}
		if _, dup := discounts[d.Code]; dup {
			return nil, errors.Newf(errors.TypeConfig, "duplicate discount code %s", d.Code)
		}
		discounts[d.Code] = d
	}

	l.logger.Info("pricing file loaded",
		zap.String("path", filename),
		zap.String("version", m.Version),
		zap.Int("discounts", len(discounts)),
	)
	return newBundle(m, discounts), nil
}

func (l *Loader) evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(l.variables))
	for name, value := range l.variables {
		vars[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": cty.ObjectVal(vars),
		},
	}
}

func convertModel(file *fileSchema, defaultCurrency types.Currency) (*types.PricingModel, error) {
	if file.Meta == nil {
		return nil, errors.Config("pricing file has no meta block")
	}

	var c converter
	m := &types.PricingModel{
		Version: file.Meta.Version,
		Meta: types.PricingMeta{
			PageCostPerUnit: c.amount("meta.page_cost_per_unit", file.Meta.PageCostPerUnit),
			RangePercent:    c.amount("meta.range_percent", file.Meta.RangePercent),
			DefaultCurrency: types.Currency(file.Meta.DefaultCurrency),
		},
	}
	if m.Meta.DefaultCurrency == "" {
		m.Meta.DefaultCurrency = defaultCurrency
	}
	if len(file.Meta.ProjectMinimums) > 0 {
		m.Meta.ProjectMinimums = make(map[string]decimal.Decimal, len(file.Meta.ProjectMinimums))
		for key, v := range file.Meta.ProjectMinimums {
			m.Meta.ProjectMinimums[key] = c.amount("meta.project_minimums."+key, v)
		}
	}

	for _, p := range file.ProjectTypes {
		m.ProjectTypes = append(m.ProjectTypes, types.ProjectType{
			Key:         p.Key,
			DisplayName: p.DisplayName,
			BaseRate:    c.amount("project_type."+p.Key, p.BaseRate),
			Order:       p.Order,
			IsActive:    active(p.Active),
		})
	}

	for _, o := range file.Overrides {
		m.BaseRateOverrides = append(m.BaseRateOverrides, types.BaseRateOverride{
			ProjectTypeKey: o.ProjectTypeKey,
			ClientTypeKey:  o.ClientTypeKey,
			BaseRate:       c.amount("base_rate_override."+o.ProjectTypeKey+"."+o.ClientTypeKey, o.BaseRate),
			Order:          o.Order,
			IsActive:       active(o.Active),
		})
	}

	for _, f := range file.Features {
		m.Features = append(m.Features, types.Feature{
			Key:         f.Key,
			DisplayName: f.DisplayName,
			Cost:        c.amount("feature."+f.Key, f.Cost),
			Group:       f.Group,
			Order:       f.Order,
			IsActive:    active(f.Active),
		})
	}

	for _, g := range file.Groups {
		group := types.MultiplierGroup{
			Key:         g.Key,
			DisplayName: g.DisplayName,
			Order:       g.Order,
			IsActive:    active(g.Active),
		}
		for _, o := range g.Options {
			group.Options = append(group.Options, types.MultiplierOption{
				Key:         o.Key,
				Value:       c.amount("multiplier_group."+g.Key+"."+o.Key, o.Value),
				IsFixed:     o.Fixed,
				DisplayName: o.DisplayName,
				Order:       o.Order,
				IsActive:    active(o.Active),
			})
		}
		m.MultiplierGroups = append(m.MultiplierGroups, group)
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return m, nil
}

func convertDiscount(block discountBlock) (*types.Discount, error) {
	var c converter
	d := &types.Discount{
		Code:         discount.NormalizeCode(block.Code),
		Type:         types.DiscountType(block.Type),
		Amount:       c.amount("amount", block.Amount),
		Currency:     types.Currency(block.Currency),
		StartsAt:     c.time("starts_at", block.StartsAt),
		EndsAt:       c.time("ends_at", block.EndsAt),
		MaxUses:      block.MaxUses,
		UsedCount:    block.UsedCount,
		PerUserLimit: block.PerUserLimit,
		IsActive:     active(block.Active),
	}
	if s := block.AppliesTo; s != nil {
		d.AppliesTo = types.ScopeRules{
			ProjectTypes:       s.ProjectTypes,
			Features:           s.Features,
			ClientTypes:        s.ClientTypes,
			ExcludeClientTypes: s.ExcludeClientTypes,
		}
	}

	if err := c.err(); err != nil {
		return nil, err.WithContext("code", d.Code)
	}
	return d, nil
}

// converter collects parse problems so one pass reports all of them
type converter struct {
	problems []string
}

func (c *converter) amount(field, raw string) decimal.Decimal {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s: %q is not a number", field, raw))
		return decimal.Zero
	}
	return v
}

func (c *converter) time(field, raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s: %q is not an RFC 3339 time", field, raw))
		return nil
	}
	return &t
}

func (c *converter) err() *errors.Error {
	if len(c.problems) == 0 {
		return nil
	}
	return errors.Newf(errors.TypeConfig, "invalid pricing file values: %s", strings.Join(c.problems, "; ")).
		WithContext("problems", c.problems)
}
