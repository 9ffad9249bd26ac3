package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bizplan/internal/models"
	"bizplan/internal/services/plan"
)

// ValueRequest carries one optional number; null clears the value
type ValueRequest struct {
	Value *float64 `json:"value"`
}

// Applier runs plan reducers
type Applier interface {
	Apply(ctx context.Context, r plan.Reducer) (models.Change, error)
}

// Apply runs red and answers with the resulting change
func Apply(w http.ResponseWriter, r *http.Request, m Applier, red plan.Reducer) {
	change, err := m.Apply(r.Context(), red)
	if err != nil {
		Error(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, change)
}

// Scenario parses the {scenario} URL parameter
func Scenario(r *http.Request) (models.ScenarioName, error) {
	name, ok := models.ParseScenario(chi.URLParam(r, "scenario"))
	if !ok {
		return "", models.ErrUnknownScenario
	}
	return name, nil
}

// Month parses the {month} URL parameter
func Month(r *http.Request) (models.Month, error) {
	m, ok := models.ParseMonth(chi.URLParam(r, "month"))
	if !ok {
		return "", models.ErrUnknownMonth
	}
	return m, nil
}

// ScenarioOrBase reads ?scenario=, defaulting to the plan's base scenario
func ScenarioOrBase(r *http.Request, doc *models.PlanDocument) (models.ScenarioName, error) {
	s := r.URL.Query().Get("scenario")
	if s == "" {
		return doc.BaseScenario, nil
	}
	name, ok := models.ParseScenario(s)
	if !ok {
		return "", models.ErrUnknownScenario
	}
	return name, nil
}
