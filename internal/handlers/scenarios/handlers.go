// Package scenarios serves the three 2026 projection scenarios: growth,
// input mode, per-month driver edits and custom line items.
package scenarios

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "bizplan/internal/http"
	"bizplan/internal/models"
	"bizplan/internal/services/plan"
	"bizplan/internal/services/planstore"
	"bizplan/internal/services/projection"
)

var manager *planstore.Manager

// Initialize sets up the scenarios package with required dependencies
func Initialize(m *planstore.Manager) {
	manager = m
}

// RegisterRoutes registers all scenario routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/scenarios", handleList)
	r.Route("/api/scenarios/{scenario}", func(r chi.Router) {
		r.Get("/", handleGet)
		r.Put("/growth", handleGrowth)
		r.Put("/mode", handleMode)
		r.Put("/drivers/{driver}/{month}", handleDriver)
		r.Post("/copy", handleCopy)

		r.Post("/items/{kind}", handleAddItem)
		r.Put("/items/{kind}/{id}", handleUpdateItem)
		r.Delete("/items/{kind}/{id}", handleRemoveItem)
		r.Post("/items/{kind}/{id}/restore", handleRestoreItem)
	})
}

// ScenarioView is a scenario with its annual totals
type ScenarioView struct {
	Name   models.ScenarioName  `json:"name"`
	Base   bool                 `json:"base"`
	Data   *models.ScenarioData `json:"data"`
	Annual models.FinancialBase `json:"annual"`
}

func view(doc *models.PlanDocument, name models.ScenarioName) (ScenarioView, error) {
	sd, ok := doc.Scenario(name)
	if !ok {
		return ScenarioView{}, models.ErrUnknownScenario
	}
	return ScenarioView{
		Name:   name,
		Base:   doc.BaseScenario == name,
		Data:   sd,
		Annual: projection.AnnualBase(sd),
	}, nil
}

func handleList(w http.ResponseWriter, r *http.Request) {
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	views := make([]ScenarioView, 0, len(models.ScenarioNames))
	for _, name := range models.ScenarioNames {
		v, err := view(doc, name)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		views = append(views, v)
	}
	httpx.WriteJSON(w, http.StatusOK, views)
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
	v, err := view(doc, name)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func handleGrowth(w http.ResponseWriter, r *http.Request) {
	name, err := httpx.Scenario(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Percentage float64 `json:"percentage"`
	}
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.SetGrowth(doc, name, req.Percentage)
	})
}

func handleMode(w http.ResponseWriter, r *http.Request) {
	name, err := httpx.Scenario(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Mode         models.InputMode    `json:"mode"`
		Distribution models.Distribution `json:"distribution"`
	}
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.SetInputMode(doc, name, req.Mode, req.Distribution)
	})
}

func handleDriver(w http.ResponseWriter, r *http.Request) {
	name, err := httpx.Scenario(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	month, err := httpx.Month(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	driver, ok := models.ParseDriver(chi.URLParam(r, "driver"))
	if !ok {
		httpx.Error(w, r, plan.ErrUnknownDriver)
		return
	}
	var req httpx.ValueRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.SetDriverValue(doc, name, driver, month, req.Value)
	})
}

func handleCopy(w http.ResponseWriter, r *http.Request) {
	from, err := httpx.Scenario(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		To models.ScenarioName `json:"to"`
	}
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.CopyScenario(doc, from, req.To)
	})
}

// itemParams reads the scenario and line item kind of an item route
func itemParams(r *http.Request) (models.ScenarioName, models.LineItemKind, error) {
	name, err := httpx.Scenario(r)
	if err != nil {
		return "", "", err
	}
	kind, ok := models.ParseLineItemKind(chi.URLParam(r, "kind"))
	if !ok {
		return "", "", plan.ErrUnknownKind
	}
	return name, kind, nil
}

func handleAddItem(w http.ResponseWriter, r *http.Request) {
	name, kind, err := itemParams(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Name   string               `json:"name"`
		Values models.MonthlySeries `json:"values"`
	}
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.AddLineItem(doc, name, kind, req.Name, req.Values)
	})
}

func handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	name, kind, err := itemParams(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var patch plan.LineItemPatch
	if err := httpx.DecodeJSON(w, r, &patch); err != nil {
		httpx.Error(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.UpdateLineItem(doc, name, kind, id, patch)
	})
}

func handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	name, kind, err := itemParams(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.RemoveLineItem(doc, name, kind, id)
	})
}

func handleRestoreItem(w http.ResponseWriter, r *http.Request) {
	name, kind, err := itemParams(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.RestoreLineItem(doc, name, kind, id)
	})
}
