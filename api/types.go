// Package api - API types for price estimation
// These types define the contract for the HTTP endpoints.
package api

import (
	"context"

	"github.com/Omri-Jukin/Portfolio-sub003/core/discount"
	"github.com/Omri-Jukin/Portfolio-sub003/core/pricing"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
)

// QuoteService is what the API needs from the pricing service
type QuoteService interface {
	Quote(ctx context.Context, req pricing.QuoteRequest) (*pricing.Quote, error)
	CheckDiscount(ctx context.Context, code string, sel types.ScopeSelection) (*discount.Verdict, error)
	Redeem(ctx context.Context, req pricing.QuoteRequest) (*discount.Verdict, error)
	Model() *types.PricingModel
	Reload(ctx context.Context) error
}

// EstimateRequest is the input to POST /estimate
type EstimateRequest struct {
	types.CalculatorInputs

	// DiscountCode is optional; an unusable code is reported, not rejected
	DiscountCode string `json:"discount_code,omitempty"`

	// UserRedemptions is how often the caller's user already used the code
	UserRedemptions *int `json:"user_redemptions,omitempty"`
}

func (r *EstimateRequest) quoteRequest() pricing.QuoteRequest {
	return pricing.QuoteRequest{
		Inputs:          r.CalculatorInputs,
		DiscountCode:    r.DiscountCode,
		UserRedemptions: r.UserRedemptions,
	}
}

// EstimateResponse is the output of POST /estimate
type EstimateResponse struct {
	*pricing.Quote

	Metadata *ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains request metadata
type ResponseMetadata struct {
	RequestID     string `json:"request_id"`
	InputHash     string `json:"input_hash"`
	EngineVersion string `json:"engine_version"`
	DurationMs    int64  `json:"duration_ms"`
}

// DiscountCheckRequest is the input to POST /discounts/check and POST /discounts/redeem
type DiscountCheckRequest struct {
	Code string `json:"code"`
	types.ScopeSelection

	UserRedemptions *int `json:"user_redemptions,omitempty"`
}

// DiscountCheckResponse reports a verdict
type DiscountCheckResponse struct {
	*discount.Verdict

	RequestID string `json:"request_id"`
}

// ModelResponse is the output of GET /model: the active options a client can offer
type ModelResponse struct {
	Version          string                  `json:"version"`
	Currency         types.Currency          `json:"currency"`
	ProjectTypes     []types.ProjectType     `json:"project_types"`
	Features         []types.Feature         `json:"features"`
	MultiplierGroups []types.MultiplierGroup `json:"multiplier_groups"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes an API error
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
