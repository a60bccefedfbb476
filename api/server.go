// Package api - Thin HTTP layer over the pricing service
// The API is ONLY responsible for: input decoding, service orchestration, output serialization.
// The API NEVER performs cost logic.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Omri-Jukin/Portfolio-sub003/core/pricing"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/errors"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/logging"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// Server is the API server
type Server struct {
	service QuoteService
	mux     *http.ServeMux
	version string
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(version string, service QuoteService) *Server {
	s := &Server{
		service: service,
		mux:     http.NewServeMux(),
		version: version,
		logger:  logging.Named("api"),
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /estimate", s.handleEstimate)
	s.mux.HandleFunc("POST /discounts/check", s.handleDiscountCheck)
	s.mux.HandleFunc("POST /discounts/redeem", s.handleDiscountRedeem)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Supporting endpoints
	s.mux.HandleFunc("GET /version", s.handleVersion)
	s.mux.HandleFunc("GET /model", s.handleModel)
	s.mux.HandleFunc("POST /model/reload", s.handleReload)
}

// handleEstimate handles POST /estimate
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	requestID := w.Header().Get(RequestIDHeader)

	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if req.ProjectTypeKey == "" {
		s.writeError(w, r, "VALIDATION_ERROR", "project_type_key is required", http.StatusBadRequest)
		return
	}

	// NO COST LOGIC HERE
	quote, err := s.service.Quote(ctx, req.quoteRequest())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, &EstimateResponse{
		Quote: quote,
		Metadata: &ResponseMetadata{
			RequestID:     requestID,
			InputHash:     computeInputHash(&req),
			EngineVersion: s.version,
			DurationMs:    time.Since(start).Milliseconds(),
		},
	}, http.StatusOK)
}

// handleDiscountCheck handles POST /discounts/check
func (s *Server) handleDiscountCheck(w http.ResponseWriter, r *http.Request) {
	var req DiscountCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	verdict, err := s.service.CheckDiscount(r.Context(), req.Code, req.ScopeSelection)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, &DiscountCheckResponse{Verdict: verdict, RequestID: w.Header().Get(RequestIDHeader)}, http.StatusOK)
}

// handleDiscountRedeem handles POST /discounts/redeem
func (s *Server) handleDiscountRedeem(w http.ResponseWriter, r *http.Request) {
	var req DiscountCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	verdict, err := s.service.Redeem(r.Context(), pricing.QuoteRequest{
		Inputs: types.CalculatorInputs{
			ProjectTypeKey:      req.ProjectTypeKey,
			SelectedFeatureKeys: req.SelectedFeatureKeys,
			ClientTypeKey:       req.ClientTypeKey,
		},
		DiscountCode:    req.Code,
		UserRedemptions: req.UserRedemptions,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if !verdict.Valid {
		status = http.StatusConflict
	}
	s.writeJSON(w, &DiscountCheckResponse{Verdict: verdict, RequestID: w.Header().Get(RequestIDHeader)}, status)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":        "healthy",
		"version":       s.version,
		"model_version": s.service.Model().Version,
		"time":          time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "pricing-estimate",
		"api_version": "v1",
	}, http.StatusOK)
}

// handleModel handles GET /model
func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, activeModel(s.service.Model()), http.StatusOK)
}

// handleReload handles POST /model/reload
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Reload(r.Context()); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, map[string]string{"model_version": s.service.Model().Version}, http.StatusOK)
}

// activeModel lists the active entries of a model in display order
func activeModel(m *types.PricingModel) *ModelResponse {
	resp := &ModelResponse{
		Version:          m.Version,
		Currency:         m.Meta.DefaultCurrency,
		ProjectTypes:     []types.ProjectType{},
		Features:         []types.Feature{},
		MultiplierGroups: []types.MultiplierGroup{},
	}

	for _, pt := range m.ProjectTypes {
		if pt.IsActive {
			resp.ProjectTypes = append(resp.ProjectTypes, pt)
		}
	}
	for _, f := range m.Features {
		if f.IsActive {
			resp.Features = append(resp.Features, f)
		}
	}
	for _, g := range m.MultiplierGroups {
		if !g.IsActive {
			continue
		}
		group := g
		group.Options = nil
		for _, o := range g.Options {
			if o.IsActive {
				group.Options = append(group.Options, o)
			}
		}
		sort.SliceStable(group.Options, func(i, j int) bool { return group.Options[i].Order < group.Options[j].Order })
		resp.MultiplierGroups = append(resp.MultiplierGroups, group)
	}

	sort.SliceStable(resp.ProjectTypes, func(i, j int) bool { return resp.ProjectTypes[i].Order < resp.ProjectTypes[j].Order })
	sort.SliceStable(resp.Features, func(i, j int) bool { return resp.Features[i].Order < resp.Features[j].Order })
	sort.SliceStable(resp.MultiplierGroups, func(i, j int) bool {
		return resp.MultiplierGroups[i].Order < resp.MultiplierGroups[j].Order
	})
	return resp
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code, message string, status int) {
	s.writeJSON(w, &ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: w.Header().Get(RequestIDHeader),
	}}, status)
}

// writeServiceError maps typed errors to HTTP statuses
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	errType := errors.TypeOf(err)

	status := http.StatusInternalServerError
	switch errType {
	case errors.TypeInput:
		status = http.StatusBadRequest
	case errors.TypeNotFound:
		status = http.StatusNotFound
	case errors.TypeConflict:
		status = http.StatusConflict
	case errors.TypeConfig, errors.TypeStorage, errors.TypeCache:
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", w.Header().Get(RequestIDHeader)),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	s.writeError(w, r, string(errType), err.Error(), status)
}

// ServeHTTP implements http.Handler. Every response carries a request ID.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, requestID)

	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)

	s.logger.Debug("request",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Helper functions

func computeInputHash(req *EstimateRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
