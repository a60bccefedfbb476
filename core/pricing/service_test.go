package pricing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Omri-Jukin/Portfolio-sub003/core/discount"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/errors"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

type staticSource struct {
	model *types.PricingModel
	err   error
}

func (s *staticSource) LoadModel(context.Context) (*types.PricingModel, error) {
	return s.model, s.err
}

type memoryDiscounts struct {
	mu        sync.Mutex
	discounts map[string]*types.Discount
}

func (r *memoryDiscounts) FindDiscount(_ context.Context, code string) (*types.Discount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.discounts[code]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, errors.NotFound("discount", code)
}

func (r *memoryDiscounts) RecordRedemption(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.discounts[code]
	if !ok {
		return errors.NotFound("discount", code)
	}
	if d.MaxUses != nil && d.UsedCount >= *d.MaxUses {
		return errors.New(errors.TypeConflict, "discount exhausted")
	}
	d.UsedCount++
	return nil
}

func serviceModel() *types.PricingModel {
	neutral := func(key string) types.MultiplierGroup {
		return types.MultiplierGroup{Key: key, Options: []types.MultiplierOption{{Key: "standard", Value: d("1"), IsFixed: true}}}
	}
	return &types.PricingModel{
		Version:      "v1",
		ProjectTypes: []types.ProjectType{{Key: "landing", BaseRate: d("9000"), IsActive: true}},
		Features:     []types.Feature{{Key: "cms", Cost: d("6000"), IsActive: true}},
		MultiplierGroups: []types.MultiplierGroup{
			neutral(types.GroupComplexity),
			neutral(types.GroupTimeline),
			neutral(types.GroupTech),
			neutral(types.GroupClientType),
		},
		Meta: types.PricingMeta{
			PageCostPerUnit: d("750"),
			RangePercent:    d("0.18"),
			DefaultCurrency: types.CurrencyUSD,
			ProjectMinimums: map[string]decimal.Decimal{"landing": d("8500")},
		},
	}
}

func serviceDiscounts() *memoryDiscounts {
	maxUses := 2
	ended := testNow.Add(-24 * time.Hour)
	return &memoryDiscounts{discounts: map[string]*types.Discount{
		"SPRING": {Code: "SPRING", Type: types.DiscountPercent, Amount: d("10"), IsActive: true, PerUserLimit: 1},
		"OLD":    {Code: "OLD", Type: types.DiscountPercent, Amount: d("50"), IsActive: true, EndsAt: &ended},
		"LIMITED": {
			Code: "LIMITED", Type: types.DiscountFixed, Amount: d("1000"), IsActive: true, MaxUses: &maxUses,
		},
		"CMSONLY": {
			Code: "CMSONLY", Type: types.DiscountFixed, Amount: d("500"), IsActive: true,
			AppliesTo: types.ScopeRules{Features: []string{"cms"}},
		},
	}}
}

func newTestService(t *testing.T, opts ...Option) (*Service, *memoryDiscounts) {
	t.Helper()
	repo := serviceDiscounts()
	base := []Option{
		WithLogger(zap.NewNop()),
		WithEvaluator(discount.NewEvaluator(discount.WithClock(func() time.Time { return testNow }))),
	}
	svc, err := NewService(context.Background(), &staticSource{model: serviceModel()}, repo, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func landing() types.CalculatorInputs {
	return types.CalculatorInputs{
		ProjectTypeKey: "landing",
		ComplexityKey:  "standard",
		TimelineKey:    "standard",
		TechKey:        "standard",
		ClientTypeKey:  "standard",
	}
}

func TestQuoteDiscounts(t *testing.T) {
	withUses := func(n int) *int { return &n }

	tests := []struct {
		name       string
		req        QuoteRequest
		wantReason discount.Reason
		wantFinal  string
		wantBelow  bool
	}{
		{
			name:      "no code",
			req:       QuoteRequest{Inputs: landing()},
			wantFinal: "9000",
		},
		{
			name:      "valid code with lowercase input",
			req:       QuoteRequest{Inputs: landing(), DiscountCode: " spring "},
			wantFinal: "8100",
			wantBelow: true,
		},
		{
			name:       "expired code is ignored",
			req:        QuoteRequest{Inputs: landing(), DiscountCode: "OLD"},
			wantReason: discount.ReasonExpired,
			wantFinal:  "9000",
		},
		{
			name:       "unknown code is reported, not failed",
			req:        QuoteRequest{Inputs: landing(), DiscountCode: "NOPE"},
			wantReason: discount.ReasonUnknownCode,
			wantFinal:  "9000",
		},
		{
			name:       "per-user limit reached",
			req:        QuoteRequest{Inputs: landing(), DiscountCode: "SPRING", UserRedemptions: withUses(1)},
			wantReason: discount.ReasonUserLimit,
			wantFinal:  "9000",
		},
		{
			name:       "out of scope",
			req:        QuoteRequest{Inputs: landing(), DiscountCode: "CMSONLY"},
			wantReason: discount.ReasonOutOfScope,
			wantFinal:  "9000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			q, err := svc.Quote(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.req.DiscountCode == "" {
				if q.Discount != nil {
					t.Errorf("expected no verdict, got %+v", q.Discount)
				}
			} else if q.Discount == nil || q.Discount.Reason != tt.wantReason {
				t.Errorf("expected reason %q, got %+v", tt.wantReason, q.Discount)
			}

			if !q.Breakdown.FinalTotal().Equal(d(tt.wantFinal)) {
				t.Errorf("expected final total %s, got %s", tt.wantFinal, q.Breakdown.FinalTotal())
			}
			if q.BelowMinimum != tt.wantBelow {
				t.Errorf("expected below minimum %v, got %v", tt.wantBelow, q.BelowMinimum)
			}
			if q.Minimum == nil || !q.Minimum.Equal(d("8500")) {
				t.Errorf("expected minimum 8500, got %v", q.Minimum)
			}
			if q.ID == "" || q.ModelVersion != "v1" {
				t.Errorf("expected id and model version, got %q %q", q.ID, q.ModelVersion)
			}
		})
	}
}

func TestQuoteUsesCache(t *testing.T) {
	cache := NewMemoryCache(nil)
	svc, _ := newTestService(t, WithCache(cache))

	req := QuoteRequest{Inputs: landing(), DiscountCode: "SPRING"}
	first, err := svc.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached {
		t.Error("first quote should not be cached")
	}

	second, err := svc.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached {
		t.Error("second quote should be served from cache")
	}
	if !second.Breakdown.FinalTotal().Equal(first.Breakdown.FinalTotal()) {
		t.Errorf("expected cached total %s, got %s", first.Breakdown.FinalTotal(), second.Breakdown.FinalTotal())
	}
	if second.Breakdown == first.Breakdown {
		t.Error("expected each quote to own its breakdown")
	}

	second.Breakdown.Total = decimal.Zero
	third, _ := svc.Quote(context.Background(), req)
	if !third.Breakdown.Total.Equal(first.Breakdown.Total) {
		t.Errorf("expected a caller's change not to reach the cache, got total %s", third.Breakdown.Total)
	}
	if first.ID == second.ID {
		t.Error("each quote should get its own id")
	}

	stats := cache.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.TotalEntries != 1 {
		t.Errorf("unexpected cache stats %+v", stats)
	}
}

func TestConcurrentQuotes(t *testing.T) {
	svc, _ := newTestService(t, WithCache(NewMemoryCache(nil)))

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := landing()
			in.NumUnits = i % 5
			q, err := svc.Quote(context.Background(), QuoteRequest{Inputs: in})
			if err != nil {
				errs <- err
				return
			}
			want := d("9000").Add(d("750").Mul(decimal.NewFromInt(int64(i % 5))))
			if !q.Breakdown.Total.Equal(want) {
				errs <- fmt.Errorf("units %d: expected %s, got %s", i%5, want, q.Breakdown.Total)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestCheckDiscount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.CheckDiscount(ctx, "cmsonly", types.ScopeSelection{SelectedFeatureKeys: []string{"cms"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Valid {
		t.Errorf("expected valid verdict, got %+v", v)
	}

	if _, err := svc.CheckDiscount(ctx, "missing", types.ScopeSelection{}); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := svc.CheckDiscount(ctx, "  ", types.ScopeSelection{}); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected input error, got %v", err)
	}
}

func TestRedeemStopsAtUsageCap(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	req := QuoteRequest{Inputs: landing(), DiscountCode: "limited"}

	for i := 0; i < 2; i++ {
		v, err := svc.Redeem(ctx, req)
		if err != nil {
			t.Fatalf("redeem %d: unexpected error: %v", i, err)
		}
		if !v.Valid {
			t.Fatalf("redeem %d: expected valid verdict, got %+v", i, v)
		}
	}

	v, err := svc.Redeem(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Valid || v.Reason != discount.ReasonExhausted {
		t.Errorf("expected exhausted verdict, got %+v", v)
	}
	if repo.discounts["LIMITED"].UsedCount != 2 {
		t.Errorf("expected 2 recorded uses, got %d", repo.discounts["LIMITED"].UsedCount)
	}
}

func TestReloadKeepsSnapshotOnFailure(t *testing.T) {
	src := &staticSource{model: serviceModel()}
	svc, err := NewService(context.Background(), src, serviceDiscounts(), WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	broken := serviceModel()
	broken.Version = "v2"
	broken.ProjectTypes = nil
	src.model = broken

	if err := svc.Reload(context.Background()); !errors.IsType(err, errors.TypeConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
	if svc.Model().Version != "v1" {
		t.Errorf("expected v1 to stay in service, got %s", svc.Model().Version)
	}
}

func TestNewServiceFailsFast(t *testing.T) {
	_, err := NewService(context.Background(), &staticSource{err: errors.Config("no model")}, serviceDiscounts())
	if !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}
