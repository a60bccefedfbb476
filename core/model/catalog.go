// Package model indexes a loaded pricing model by key.
//
// Every key dereference in the calculator goes through a Catalog. Lookups never fail:
// a missing key resolves to a neutral default and the miss is reported back to the
// caller as a types.Fallback.
package model

import (
	"github.com/shopspring/decimal"

	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
)

// Neutral is the multiplier used when a group or option cannot be resolved
var Neutral = decimal.NewFromInt(1)

type overrideKey struct {
	projectType string
	clientType  string
}

// Catalog is a read-only, key-addressed view of a PricingModel
type Catalog struct {
	model        *types.PricingModel
	projectTypes map[string]types.ProjectType
	overrides    map[overrideKey]types.BaseRateOverride
	features     map[string]types.Feature
	groups       map[string]map[string]types.MultiplierOption
}

// NewCatalog indexes a pricing model. The first entry wins when keys repeat.
func NewCatalog(m *types.PricingModel) *Catalog {
	c := &Catalog{
		model:        m,
		projectTypes: make(map[string]types.ProjectType, len(m.ProjectTypes)),
		overrides:    make(map[overrideKey]types.BaseRateOverride, len(m.BaseRateOverrides)),
		features:     make(map[string]types.Feature, len(m.Features)),
		groups:       make(map[string]map[string]types.MultiplierOption, len(m.MultiplierGroups)),
	}

	for _, pt := range m.ProjectTypes {
		if _, dup := c.projectTypes[pt.Key]; !dup {
			c.projectTypes[pt.Key] = pt
		}
	}

	for _, o := range m.BaseRateOverrides {
		// A null client type means "no override"
		if o.ClientTypeKey == "" {
			continue
		}
		k := overrideKey{projectType: o.ProjectTypeKey, clientType: o.ClientTypeKey}
		if _, dup := c.overrides[k]; !dup {
			c.overrides[k] = o
		}
	}

	for _, f := range m.Features {
		if _, dup := c.features[f.Key]; !dup {
			c.features[f.Key] = f
		}
	}

	for _, g := range m.MultiplierGroups {
		if _, dup := c.groups[g.Key]; dup {
			continue
		}
		opts := make(map[string]types.MultiplierOption, len(g.Options))
		for _, o := range g.Options {
			if _, dup := opts[o.Key]; !dup {
				opts[o.Key] = o
			}
		}
		c.groups[g.Key] = opts
	}

	return c
}

// Model returns the indexed model
func (c *Catalog) Model() *types.PricingModel {
	return c.model
}

// Meta returns the model-wide settings
func (c *Catalog) Meta() types.PricingMeta {
	return c.model.Meta
}

// BaseRate resolves the base cost for a project type and client type.
// An active (project, client) override wins; otherwise the project type's base rate;
// otherwise zero with a fallback.
func (c *Catalog) BaseRate(projectTypeKey, clientTypeKey string) (decimal.Decimal, *types.Fallback) {
	if clientTypeKey != "" {
		if o, ok := c.overrides[overrideKey{projectType: projectTypeKey, clientType: clientTypeKey}]; ok && o.IsActive {
			return o.BaseRate, nil
		}
	}

	if pt, ok := c.projectTypes[projectTypeKey]; ok {
		return pt.BaseRate, nil
	}

	return decimal.Zero, &types.Fallback{
		Kind:    types.FallbackProjectType,
		Key:     projectTypeKey,
		Default: "0",
	}
}

// Feature looks up a feature by key
func (c *Catalog) Feature(key string) (types.Feature, bool) {
	f, ok := c.features[key]
	return f, ok
}

// Multiplier resolves (group, option) to a value, defaulting to Neutral
func (c *Catalog) Multiplier(groupKey, optionKey string) (decimal.Decimal, *types.Fallback) {
	if opts, ok := c.groups[groupKey]; ok {
		if o, ok := opts[optionKey]; ok {
			return o.Value, nil
		}
	}

	return Neutral, &types.Fallback{
		Kind:    types.FallbackMultiplier,
		Group:   groupKey,
		Key:     optionKey,
		Default: Neutral.String(),
	}
}

// FixedOption returns the group's neutral/default option, if one is marked
func (c *Catalog) FixedOption(groupKey string) (types.MultiplierOption, bool) {
	for _, g := range c.model.MultiplierGroups {
		if g.Key != groupKey {
			continue
		}
		for _, o := range g.Options {
			if o.IsFixed {
				return o, true
			}
		}
		break
	}
	return types.MultiplierOption{}, false
}

// ProjectMinimum returns the caller-enforced minimum for a project type
func (c *Catalog) ProjectMinimum(projectTypeKey string) (decimal.Decimal, bool) {
	min, ok := c.model.Meta.ProjectMinimums[projectTypeKey]
	return min, ok
}
