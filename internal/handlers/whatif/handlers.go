// Package whatif serves the price/volume sensitivity matrix, the safety
// margin and the ad hoc lever simulator.
package whatif

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	httpx "bizplan/internal/http"
	"bizplan/internal/models"
	"bizplan/internal/services/planstore"
	"bizplan/internal/services/projection"
	"bizplan/internal/services/sensitivity"
)

// matrixCache keeps the last matrices keyed by a hash of their inputs
type matrixCache struct {
	mu      sync.RWMutex
	entries map[string]*models.SensitivityMatrix
}

// maxCached bounds the cache; it is reset when full
const maxCached = 64

var cache = &matrixCache{entries: map[string]*models.SensitivityMatrix{}}

// inputsHash generates a hash of the matrix inputs for the cache key
func inputsHash(base models.FinancialBase, rangePct float64) string {
	data, err := json.Marshal(struct {
		Base  models.FinancialBase
		Range float64
	}{base, rangePct})
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:8])
}

// matrix returns a cached matrix when the inputs match, building it otherwise
func matrix(base models.FinancialBase, rangePct float64) (*models.SensitivityMatrix, error) {
	key := inputsHash(base, rangePct)

	cache.mu.RLock()
	m, ok := cache.entries[key]
	cache.mu.RUnlock()
	if ok && key != "" {
		return m, nil
	}

	m, err := sensitivity.BuildMatrix(base, rangePct)
	if err != nil {
		return nil, err
	}
	if key != "" {
		cache.mu.Lock()
		if len(cache.entries) >= maxCached {
			cache.entries = map[string]*models.SensitivityMatrix{}
		}
		cache.entries[key] = m
		cache.mu.Unlock()
	}
	return m, nil
}

var manager *planstore.Manager

// Initialize sets up the whatif package with required dependencies
func Initialize(m *planstore.Manager) {
	manager = m
}

// RegisterRoutes registers all sensitivity and what-if routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/sensitivity/{scenario}", handleMatrix)
	r.Get("/api/sensitivity/{scenario}/safety", handleSafety)
	r.Get("/api/sensitivity/{scenario}/whatif", handleBase)
	r.Post("/api/sensitivity/{scenario}/whatif", handleSimulate)
}

// scenarioData loads a snapshot and the scenario named in the URL
func scenarioData(r *http.Request) (*models.PlanDocument, *models.ScenarioData, error) {
	name, err := httpx.Scenario(r)
	if err != nil {
		return nil, nil, err
	}
	doc, err := manager.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	sd, ok := doc.Scenario(name)
	if !ok {
		return nil, nil, models.ErrUnknownScenario
	}
	return doc, sd, nil
}

func handleMatrix(w http.ResponseWriter, r *http.Request) {
	rangePct, err := httpx.QueryFloat(r, "range", sensitivity.DefaultRange)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	_, sd, err := scenarioData(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	m, err := matrix(projection.AnnualBase(sd), rangePct)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func handleSafety(w http.ResponseWriter, r *http.Request) {
	_, sd, err := scenarioData(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sensitivity.SafetyMargin(projection.AnnualBase(sd)))
}

func handleBase(w http.ResponseWriter, r *http.Request) {
	doc, sd, err := scenarioData(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sensitivity.BaseFor(doc, sd))
}

func handleSimulate(w http.ResponseWriter, r *http.Request) {
	doc, sd, err := scenarioData(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var levers models.WhatIfLevers
	if err := httpx.DecodeJSON(w, r, &levers); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if levers.NewHires < 0 || levers.HireCost < 0 || levers.TicketPriceDelta <= -100 {
		httpx.ErrorResponse(w, "levers out of range", http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sensitivity.Simulate(sensitivity.BaseFor(doc, sd), levers))
}
