// Package plan serves the plan document: its profile, goals, baseline,
// statement assumptions and the user-managed OKRs, KPIs and action plan.
package plan

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "bizplan/internal/http"
	"bizplan/internal/models"
	"bizplan/internal/services/plan"
	"bizplan/internal/services/planstore"
)

var manager *planstore.Manager

// Initialize sets up the plan package with required dependencies
func Initialize(m *planstore.Manager) {
	manager = m
}

// RegisterRoutes registers all plan document routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/plan", handleGetPlan)
	r.Put("/api/plan", handleReplacePlan)
	r.Get("/api/plan/status", handleStatus)

	r.Put("/api/plan/profile", handleProfile)
	r.Put("/api/plan/goals", handleGoals)
	r.Put("/api/plan/base-scenario", handleBaseScenario)
	r.Put("/api/plan/assumptions", handleAssumptions)
	r.Put("/api/plan/baseline/{driver}/{month}", handleBaselineValue)

	r.Post("/api/plan/okrs", handleAddOKR)
	r.Delete("/api/plan/okrs/{id}", handleDeleteOKR)
	r.Post("/api/plan/kpis", handleAddKPI)
	r.Delete("/api/plan/kpis/{id}", handleDeleteKPI)
	r.Post("/api/plan/actions", handleAddAction)
	r.Put("/api/plan/actions/{id}/status", handleActionStatus)
	r.Delete("/api/plan/actions/{id}", handleDeleteAction)
}

func handleGetPlan(w http.ResponseWriter, r *http.Request) {
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, doc)
}

func handleReplacePlan(w http.ResponseWriter, r *http.Request) {
	var incoming models.PlanDocument
	if err := httpx.DecodeJSON(w, r, &incoming); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.ReplaceDocument(doc, &incoming)
	})
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, manager.Status())
}

func handleProfile(w http.ResponseWriter, r *http.Request) {
	var p models.CompanyProfile
	if err := httpx.DecodeJSON(w, r, &p); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.SetProfile(doc, p)
	})
}

func handleGoals(w http.ResponseWriter, r *http.Request) {
	var g models.Goals2026
	if err := httpx.DecodeJSON(w, r, &g); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.SetGoals(doc, g)
	})
}

func handleBaseScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scenario models.ScenarioName `json:"scenario"`
	}
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.SelectBaseScenario(doc, req.Scenario)
	})
}

func handleAssumptions(w http.ResponseWriter, r *http.Request) {
	var a models.StatementAssumptions
	if err := httpx.DecodeJSON(w, r, &a); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.SetAssumptions(doc, a)
	})
}

func handleBaselineValue(w http.ResponseWriter, r *http.Request) {
	month, err := httpx.Month(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req httpx.ValueRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	driver := models.Driver(chi.URLParam(r, "driver"))
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.SetBaselineValue(doc, driver, month, req.Value)
	})
}

func handleAddOKR(w http.ResponseWriter, r *http.Request) {
	var req models.OKRSuggestion
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.AddOKR(doc, req.Objective, req.KeyResults, models.SourceUser)
	})
}

func handleDeleteOKR(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.DeleteOKR(doc, id)
	})
}

func handleAddKPI(w http.ResponseWriter, r *http.Request) {
	var req models.KPISuggestion
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.AddKPI(doc, req, models.SourceUser)
	})
}

func handleDeleteKPI(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.DeleteKPI(doc, id)
	})
}

func handleAddAction(w http.ResponseWriter, r *http.Request) {
	var req models.ActionSuggestion
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.AddActionItem(doc, req, models.SourceUser)
	})
}

func handleActionStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status string `json:"status"`
	}
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.SetActionStatus(doc, id, req.Status)
	})
}

func handleDeleteAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.DeleteActionItem(doc, id)
	})
}
