package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Omri-Jukin/Portfolio-sub003/core/estimate"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/errors"
)

func sampleBreakdown() *types.CostBreakdown {
	m := &types.PricingModel{
		ProjectTypes: []types.ProjectType{{Key: "landing", BaseRate: decimal.NewFromInt(9000), IsActive: true}},
		MultiplierGroups: []types.MultiplierGroup{{
			Key:     types.GroupComplexity,
			Options: []types.MultiplierOption{{Key: "complex", Value: decimal.RequireFromString("1.6")}},
		}},
		Meta: types.PricingMeta{
			PageCostPerUnit: decimal.NewFromInt(750),
			RangePercent:    decimal.RequireFromString("0.18"),
			DefaultCurrency: types.CurrencyUSD,
		},
	}
	inputs := types.CalculatorInputs{ProjectTypeKey: "landing", NumUnits: 3, ComplexityKey: "complex", TimelineKey: "missing"}
	desc := &types.DiscountDescriptor{Type: types.DiscountPercent, Amount: decimal.RequireFromString("12.5")}
	return estimate.Calculate(m, inputs, desc)
}

func TestBreakdownEncoding(t *testing.T) {
	original := sampleBreakdown()

	data, err := encode(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !got.Total.Equal(original.Total) || !got.FinalTotal().Equal(original.FinalTotal()) {
		t.Errorf("expected totals %s/%s, got %s/%s", original.Total, original.FinalTotal(), got.Total, got.FinalTotal())
	}
	if got.Range != original.Range {
		t.Errorf("expected range %+v, got %+v", original.Range, got.Range)
	}
	if len(got.Fallbacks) != len(original.Fallbacks) || len(got.Fallbacks) == 0 {
		t.Errorf("expected %d fallbacks to survive, got %d", len(original.Fallbacks), len(got.Fallbacks))
	}
	if !got.ComplexityMultiplier.Equal(decimal.RequireFromString("1.6")) {
		t.Errorf("expected exact multiplier 1.6, got %s", got.ComplexityMultiplier)
	}
}

func TestDecodeCorruptEntry(t *testing.T) {
	_, err := decode([]byte("{not json"))
	if !errors.IsType(err, errors.TypeCache) {
		t.Errorf("expected cache error, got %v", err)
	}
}

func TestKeyPrefix(t *testing.T) {
	c := WithClient(nil, time.Minute)
	if got := c.key("abc"); got != "estimate:abc" {
		t.Errorf("expected estimate:abc, got %s", got)
	}
	if err := c.Close(); err != nil {
		t.Errorf("expected no-op close for borrowed client, got %v", err)
	}
}

// TestRedisRoundTrip runs against a real server when PRICING_TEST_REDIS_ADDR is set
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("PRICING_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PRICING_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr}, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "test-" + time.Now().Format("150405.000000")
	if _, ok, err := c.Get(ctx, key); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, key, sampleBreakdown()); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !got.Total.Equal(sampleBreakdown().Total) {
		t.Errorf("expected total %s, got %s", sampleBreakdown().Total, got.Total)
	}
}
