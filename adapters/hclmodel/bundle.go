package hclmodel

import (
	"context"
	"sort"
	"sync"

	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/errors"
)

// Bundle is a decoded pricing file: one model plus its discount codes.
// Redemptions are counted in memory for the lifetime of the bundle.
type Bundle struct {
	model *types.PricingModel

	mu        sync.Mutex
	discounts map[string]*types.Discount

	// redeemed counts uses recorded in memory, on top of the file's used_count
	redeemed map[string]int
}

func newBundle(m *types.PricingModel, discounts map[string]*types.Discount) *Bundle {
	return &Bundle{model: m, discounts: discounts, redeemed: make(map[string]int)}
}

// Model returns the decoded pricing model
func (b *Bundle) Model() *types.PricingModel {
	return b.model
}

// LoadModel implements pricing.ModelSource
func (b *Bundle) LoadModel(context.Context) (*types.PricingModel, error) {
	return b.model, nil
}

// FindDiscount returns a copy of the discount stored under the normalized code
func (b *Bundle) FindDiscount(_ context.Context, code string) (*types.Discount, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	d, ok := b.discounts[code]
	if !ok {
		return nil, errors.NotFound("discount", code)
	}
	copied := *d
	return &copied, nil
}

// RecordRedemption increments the usage counter unless the cap is reached
func (b *Bundle) RecordRedemption(_ context.Context, code string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	d, ok := b.discounts[code]
	if !ok {
		return errors.NotFound("discount", code)
	}
	if !d.IsActive || (d.MaxUses != nil && d.UsedCount >= *d.MaxUses) {
		return errors.New(errors.TypeConflict, "discount can no longer be redeemed").WithContext("code", code)
	}
	d.UsedCount++
	b.redeemed[code]++
	return nil
}

// carryRedemptions re-applies the in-memory uses of prev to codes still present in b.
// Codes removed from the file drop their counts.
func (b *Bundle) carryRedemptions(prev *Bundle) {
	prev.mu.Lock()
	defer prev.mu.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()

	for code, n := range prev.redeemed {
		if d, ok := b.discounts[code]; ok {
			d.UsedCount += n
			b.redeemed[code] = n
		}
	}
}

// Discounts returns copies of all discounts ordered by code
func (b *Bundle) Discounts() []types.Discount {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]types.Discount, 0, len(b.discounts))
	for _, d := range b.discounts {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
