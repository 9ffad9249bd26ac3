// Package insights serves the AI narrative panels and merges the structures
// they suggest into the plan.
package insights

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httpx "bizplan/internal/http"
	"bizplan/internal/log"
	"bizplan/internal/models"
	"bizplan/internal/services/narrative"
	"bizplan/internal/services/plan"
	"bizplan/internal/services/planstore"
)

var (
	manager *planstore.Manager
	service *narrative.Service
	timeout time.Duration
)

// Initialize sets up the insights package with required dependencies. Each
// generation is bounded by requestTimeout.
func Initialize(m *planstore.Manager, s *narrative.Service, requestTimeout time.Duration) {
	manager = m
	service = s
	timeout = requestTimeout
}

// RegisterRoutes registers all narrative routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/narrative", handleList)
	r.Get("/api/narrative/status", handleStatus)
	r.Post("/api/narrative/{slot}", handleGenerate)
	r.Post("/api/narrative/{slot}/apply", handleApply)
}

// StatusResponse tells the client whether generation is available and which
// slots are busy
type StatusResponse struct {
	Enabled bool                          `json:"enabled"`
	Loading map[models.NarrativeSlot]bool `json:"loading"`
}

// GenerateResponse is a fresh narrative with the change that stored it
type GenerateResponse struct {
	Result *models.NarrativeResult `json:"result"`
	Change models.Change           `json:"change"`
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, StatusResponse{Enabled: service.Enabled(), Loading: service.Status()})
}

func handleList(w http.ResponseWriter, r *http.Request) {
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, doc.Narratives)
}

func slotParam(r *http.Request) (models.NarrativeSlot, error) {
	slot, ok := models.ParseNarrativeSlot(chi.URLParam(r, "slot"))
	if !ok {
		return "", narrative.ErrUnknownSlot
	}
	return slot, nil
}

func handleGenerate(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	ctx := r.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	result, err := service.Generate(ctx, slot, doc)
	if err != nil {
		if ctx.Err() != nil {
			log.FromContext(r.Context()).Warn("narrative timed out", log.FieldSlot, slot)
			httpx.ErrorResponse(w, "narrative generation timed out", http.StatusGatewayTimeout)
			return
		}
		httpx.Error(w, r, err)
		return
	}

	change, err := manager.Apply(r.Context(), func(doc *models.PlanDocument) (models.Change, error) {
		return plan.StoreNarrative(doc, result.Narrative)
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, GenerateResponse{Result: result, Change: change})
}

// handleApply merges the suggestions the user accepted. They go through the
// same reducers as manual entries; duplicates are skipped.
func handleApply(w http.ResponseWriter, r *http.Request) {
	if _, err := slotParam(r); err != nil {
		httpx.Error(w, r, err)
		return
	}
	var s models.Suggestions
	if err := httpx.DecodeJSON(w, r, &s); err != nil {
		httpx.Error(w, r, err)
		return
	}

	var accepted int
	change, err := manager.Apply(r.Context(), func(doc *models.PlanDocument) (models.Change, error) {
		c, n := plan.MergeSuggestions(doc, s)
		accepted = n
		return c, nil
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"accepted": accepted, "change": change})
}
