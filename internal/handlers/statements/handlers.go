// Package statements serves the generated income statement (DRE), cash
// flow (DFC) and balance sheet (BP) of each scenario.
package statements

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httpx "bizplan/internal/http"
	"bizplan/internal/models"
	"bizplan/internal/services/plan"
	"bizplan/internal/services/planstore"
	"bizplan/internal/services/statements"
)

var manager *planstore.Manager

// Initialize sets up the statements package with required dependencies
func Initialize(m *planstore.Manager) {
	manager = m
}

// RegisterRoutes registers all statement routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/statements/{scenario}", handleGet)
	r.Post("/api/statements/{scenario}/generate", handleGenerate)
	r.Get("/api/statements/{scenario}/{kind}/annual", handleAnnual)
}

// PlanView is a scenario's statements with their consistency checks
type PlanView struct {
	Scenario models.ScenarioName   `json:"scenario"`
	Plan     *models.FinancialPlan `json:"plan"`
	// Imbalance is the worst monthly gap between assets and claims
	Imbalance      float64 `json:"imbalance"`
	OpeningWarning string  `json:"opening_warning,omitempty"`
}

func handleGet(w http.ResponseWriter, r *http.Request) {
	name, err := httpx.Scenario(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	fp := statements.Lookup(doc, name)
	v := PlanView{Scenario: name, Plan: fp, Imbalance: statements.Imbalance(fp)}
	if err := statements.OpeningImbalance(doc.Assumptions); err != nil {
		v.OpeningWarning = err.Error()
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func handleGenerate(w http.ResponseWriter, r *http.Request) {
	name, err := httpx.Scenario(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.GenerateStatements(doc, name, time.Now())
	})
}

func handleAnnual(w http.ResponseWriter, r *http.Request) {
	name, err := httpx.Scenario(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	kind, ok := models.ParseStatementKind(chi.URLParam(r, "kind"))
	if !ok {
		httpx.ErrorResponse(w, "unknown statement", http.StatusNotFound)
		return
	}
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	st := statements.Lookup(doc, name).Statement(kind)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"scenario": name,
		"kind":     kind,
		"mode":     st.Mode,
		"annual":   st.AnnualColumn(),
	})
}
