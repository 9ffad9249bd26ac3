// Package pricing serves the price calculator and the saved pricing items.
package pricing

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httpx "bizplan/internal/http"
	"bizplan/internal/models"
	"bizplan/internal/services/plan"
	"bizplan/internal/services/planstore"
	"bizplan/internal/services/pricing"
)

var manager *planstore.Manager

// Initialize sets up the pricing package with required dependencies
func Initialize(m *planstore.Manager) {
	manager = m
}

// RegisterRoutes registers all pricing routes
func RegisterRoutes(r chi.Router) {
	r.Post("/api/pricing/calculate", handleCalculate)
	r.Get("/api/pricing/items", handleList)
	r.Post("/api/pricing/items", handleSave)
	r.Put("/api/pricing/items/{id}", handleUpdate)
	r.Delete("/api/pricing/items/{id}", handleDelete)
}

// ItemRequest names a set of pricing inputs
type ItemRequest struct {
	Name   string               `json:"name"`
	Inputs models.PricingInputs `json:"inputs"`
}

func handleCalculate(w http.ResponseWriter, r *http.Request) {
	var in models.PricingInputs
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := pricing.Validate(in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pricing.Calculate(in))
}

func handleList(w http.ResponseWriter, r *http.Request) {
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	items := doc.PricingItems
	if items == nil {
		items = []models.PricingItem{}
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func handleSave(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.SavePricingItem(doc, req.Name, req.Inputs, time.Now())
	})
}

func handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ItemRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.UpdatePricingItem(doc, id, req.Name, req.Inputs, time.Now())
	})
}

func handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.DeletePricingItem(doc, id)
	})
}
