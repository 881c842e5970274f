// Package handlers provides HTTP handlers for portfolio optimization requests.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/quantumfolio/quantumfolio/internal/modules/market"
	"github.com/quantumfolio/quantumfolio/internal/modules/optimization"
)

// DefaultRiskFactor is applied when a request does not supply one.
const DefaultRiskFactor = 0.5

// quantumAdvantage is the advertised speedup factor per algorithm label.
var quantumAdvantage = map[string]float64{
	"QAOA": 2.3,
	"VQE":  1.8,
}

// Handler handles optimization HTTP requests
type Handler struct {
	generator *market.Generator
	service   *optimization.Service
	log       zerolog.Logger
}

// NewHandler creates a new optimization handler
func NewHandler(generator *market.Generator, service *optimization.Service, log zerolog.Logger) *Handler {
	return &Handler{
		generator: generator,
		service:   service,
		log:       log.With().Str("handler", "optimization").Logger(),
	}
}

// OptimizeRequest represents a portfolio optimization request
type OptimizeRequest struct {
	InvestmentAmount decimal.Decimal `json:"investmentAmount"`
	RiskTolerance    string          `json:"riskTolerance"`
	Algorithm        string          `json:"algorithm"`
	RiskFactor       *float64        `json:"riskFactor,omitempty"`
}

// AllocationEntry is one allocation row with the invested amount attached.
type AllocationEntry struct {
	Asset      string          `json:"asset"`
	Percentage float64         `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// HandleOptimize handles POST /api/optimize
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	if req.InvestmentAmount.IsZero() {
		req.InvestmentAmount = decimal.NewFromInt(100000)
	}
	if req.RiskTolerance == "" {
		req.RiskTolerance = "moderate"
	}
	if req.Algorithm == "" {
		req.Algorithm = "QAOA"
	}
	riskFactor := DefaultRiskFactor
	if req.RiskFactor != nil {
		riskFactor = *req.RiskFactor
	}

	snapshot := h.generator.Snapshot(market.DefaultUniverse)

	result, err := h.service.Predict(snapshot.Assets, snapshot.Returns, snapshot.Covariance, riskFactor, req.Algorithm)
	if err != nil {
		h.log.Error().Err(err).Msg("Optimization request failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Internal server error: " + err.Error(),
		})
		return
	}
	if result == nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Unknown algorithm: " + req.Algorithm,
		})
		return
	}
	if result.Status != optimization.StatusSuccess {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"error":   result.Error,
		})
		return
	}

	allocation := h.service.ToAllocation(result, snapshot.Assets)
	entries := make([]AllocationEntry, 0, len(allocation))
	for _, entry := range allocation {
		amount := req.InvestmentAmount.
			Mul(decimal.NewFromFloat(entry.Percentage)).
			Div(decimal.NewFromInt(100)).
			Round(2)
		entries = append(entries, AllocationEntry{
			Asset:      entry.Asset,
			Percentage: entry.Percentage,
			Amount:     amount,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"allocation":       entries,
			"expectedReturn":   *result.ObjectiveValue,
			"riskScore":        req.RiskTolerance,
			"algorithm":        result.Algorithm,
			"quantumAdvantage": quantumAdvantage[result.Algorithm],
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
