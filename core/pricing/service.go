// Package pricing provides the quote service that sits between callers and the engine.
//
// The service owns everything the pure engine leaves to its caller: loading the model,
// looking up and pre-validating discount codes, enforcing project minimums, and caching.
// It NEVER performs cost arithmetic itself.
package pricing

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Omri-Jukin/Portfolio-sub003/core/discount"
	"github.com/Omri-Jukin/Portfolio-sub003/core/estimate"
	"github.com/Omri-Jukin/Portfolio-sub003/core/model"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/errors"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/logging"
)

// ModelSource supplies validated pricing models
type ModelSource interface {
	LoadModel(ctx context.Context) (*types.PricingModel, error)
}

// DiscountRepository looks up discount records by normalized code.
// Unknown codes return an errors.TypeNotFound error.
type DiscountRepository interface {
	FindDiscount(ctx context.Context, code string) (*types.Discount, error)
}

// Redeemer records a redemption. Implementations must increment atomically and
// refuse once the usage cap is reached.
type Redeemer interface {
	RecordRedemption(ctx context.Context, code string) error
}

// QuoteRequest is one preview or finalization request
type QuoteRequest struct {
	Inputs       types.CalculatorInputs `json:"inputs"`
	DiscountCode string                 `json:"discount_code,omitempty"`

	// UserRedemptions is how often the requesting user already used the code, when known
	UserRedemptions *int `json:"user_redemptions,omitempty"`
}

// Quote is a priced request
type Quote struct {
	ID           string               `json:"id"`
	ModelVersion string               `json:"model_version"`
	Breakdown    *types.CostBreakdown `json:"breakdown"`

	// Discount is the verdict for the requested code, nil when no code was given
	Discount *discount.Verdict `json:"discount,omitempty"`

	// Minimum is the project type's minimum, when one is configured
	Minimum      *decimal.Decimal `json:"minimum,omitempty"`
	BelowMinimum bool             `json:"below_minimum"`

	Cached bool `json:"cached"`
}

type snapshot struct {
	model   *types.PricingModel
	catalog *model.Catalog
}

// Service prices requests against the current model snapshot
type Service struct {
	source     ModelSource
	discounts  DiscountRepository
	cache      Cache
	calculator *estimate.Calculator
	evaluator  *discount.Evaluator
	logger     *zap.Logger

	group singleflight.Group

	mu      sync.RWMutex
	current *snapshot
}

// Option configures a Service
type Option func(*Service)

// WithCache enables caching of breakdowns
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithEvaluator replaces the discount evaluator (e.g. to pin the clock)
func WithEvaluator(e *discount.Evaluator) Option {
	return func(s *Service) { s.evaluator = e }
}

// WithCalculator replaces the estimate calculator
func WithCalculator(c *estimate.Calculator) Option {
	return func(s *Service) { s.calculator = c }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a service and loads the first model snapshot
func NewService(ctx context.Context, source ModelSource, discounts DiscountRepository, opts ...Option) (*Service, error) {
	s := &Service{
		source:    source,
		discounts: discounts,
		logger:    logging.Named("pricing"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.calculator == nil {
		s.calculator = estimate.NewCalculator(estimate.WithLogger(s.logger))
	}
	if s.evaluator == nil {
		s.evaluator = discount.NewEvaluator()
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload fetches and validates the model, replacing the snapshot on success.
// On failure the previous snapshot stays in service.
func (s *Service) Reload(ctx context.Context) error {
	m, err := s.source.LoadModel(ctx)
	if err != nil {
		return err
	}
	if err := model.Validate(m); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = &snapshot{model: m, catalog: model.NewCatalog(m)}
	s.mu.Unlock()

	s.logger.Info("pricing model loaded",
		zap.String("version", m.Version),
		zap.Int("project_types", len(m.ProjectTypes)),
		zap.Int("features", len(m.Features)),
		zap.Int("multiplier_groups", len(m.MultiplierGroups)),
	)
	return nil
}

// Model returns the model currently in service
func (s *Service) Model() *types.PricingModel {
	return s.snapshot().model
}

func (s *Service) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// CheckDiscount pre-validates a code for a selection without pricing anything
func (s *Service) CheckDiscount(ctx context.Context, code string, sel types.ScopeSelection) (*discount.Verdict, error) {
	code = discount.NormalizeCode(code)
	if code == "" {
		return nil, errors.Input("discount code is required")
	}

	d, err := s.discounts.FindDiscount(ctx, code)
	if err != nil {
		return nil, err
	}

	v := s.evaluator.Check(d, sel)
	return &v, nil
}

// Quote prices a request
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	snap := s.snapshot()
	inputs := req.Inputs

	quote := &Quote{
		ID:           uuid.NewString(),
		ModelVersion: snap.model.Version,
	}

	var desc *types.DiscountDescriptor
	code := discount.NormalizeCode(req.DiscountCode)
	if code != "" {
		verdict, d, err := s.verdictFor(ctx, code, req)
		if err != nil {
			return nil, err
		}
		quote.Discount = verdict
		if verdict.Valid {
			desc = d.Descriptor()
		} else {
			code = ""
		}
	}

	key := CacheKey(snap.model.Version, inputs, code, desc)
	breakdown, cached := s.lookup(ctx, key)
	if !cached {
		v, _, shared := s.group.Do(key, func() (interface{}, error) {
			b := s.calculator.Estimate(snap.catalog, inputs, desc)
			s.store(ctx, key, b)
			return b, nil
		})
		breakdown = v.(*types.CostBreakdown)
		if shared {
			breakdown = breakdown.Clone()
		}
	}
	quote.Breakdown = breakdown
	quote.Cached = cached

	if min, ok := snap.catalog.ProjectMinimum(inputs.ProjectTypeKey); ok {
		quote.Minimum = &min
		quote.BelowMinimum = breakdown.FinalTotal().LessThan(min)
	}

	return quote, nil
}

// Redeem re-checks a code for the request and records one use
func (s *Service) Redeem(ctx context.Context, req QuoteRequest) (*discount.Verdict, error) {
	redeemer, ok := s.discounts.(Redeemer)
	if !ok {
		return nil, errors.New(errors.TypeInternal, "discount repository does not support redemption")
	}

	code := discount.NormalizeCode(req.DiscountCode)
	if code == "" {
		return nil, errors.Input("discount code is required")
	}

	verdict, _, err := s.verdictFor(ctx, code, req)
	if err != nil {
		return nil, err
	}
	if !verdict.Valid {
		return verdict, nil
	}

	if err := redeemer.RecordRedemption(ctx, code); err != nil {
		return nil, err
	}
	s.logger.Info("discount redeemed", zap.String("code", code))
	return verdict, nil
}

func (s *Service) verdictFor(ctx context.Context, code string, req QuoteRequest) (*discount.Verdict, *types.Discount, error) {
	d, err := s.discounts.FindDiscount(ctx, code)
	if errors.IsType(err, errors.TypeNotFound) {
		return &discount.Verdict{Code: code, Reason: discount.ReasonUnknownCode}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	v := s.evaluator.Check(d, req.Inputs.Selection())
	if v.Valid && req.UserRedemptions != nil && d.UserLimitReached(*req.UserRedemptions) {
		v.Valid = false
		v.Reason = discount.ReasonUserLimit
	}
	return &v, d, nil
}

// Cache failures degrade to recomputation.
func (s *Service) lookup(ctx context.Context, key string) (*types.CostBreakdown, bool) {
	if s.cache == nil {
		return nil, false
	}
	b, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("estimate cache read failed", zap.Error(err))
		return nil, false
	}
	if ok {
		s.logger.Debug("estimate cache hit", zap.String("key", key))
	}
	return b, ok
}

func (s *Service) store(ctx context.Context, key string, b *types.CostBreakdown) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, b); err != nil {
		s.logger.Warn("estimate cache write failed", zap.Error(err))
	}
}
