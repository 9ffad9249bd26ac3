// Package tracking serves monthly actuals, the projected-versus-actual
// report and the year-end forecast.
package tracking

import (
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	httpx "bizplan/internal/http"
	"bizplan/internal/log"
	"bizplan/internal/models"
	"bizplan/internal/services/ledger"
	"bizplan/internal/services/plan"
	"bizplan/internal/services/planstore"
	"bizplan/internal/services/reconcile"
)

// maxImportBytes caps uploaded statement exports
const maxImportBytes = 10 << 20

var manager *planstore.Manager

// Initialize sets up the tracking package with required dependencies
func Initialize(m *planstore.Manager) {
	manager = m
}

// RegisterRoutes registers all tracking routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/tracking", handleList)
	r.Get("/api/tracking/forecast", handleForecast)
	r.Post("/api/tracking/import", handleImport)
	r.Get("/api/tracking/{month}", handleGetMonth)
	r.Put("/api/tracking/{month}", handleSetMonth)
	r.Delete("/api/tracking/{month}", handleClearMonth)
	r.Get("/api/tracking/{month}/report", handleReport)
	r.Get("/api/tracking/{month}/forecast", handleForecast)
}

// MonthActuals is the flat view of one month's reported values
type MonthActuals struct {
	Month  models.Month        `json:"month"`
	Values map[string]*float64 `json:"values"`
}

func handleList(w http.ResponseWriter, r *http.Request) {
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	out := make([]MonthActuals, 0, len(doc.Tracking2026))
	for _, m := range models.Months {
		if entry := doc.Tracking2026.Entry(m); !entry.IsEmpty() {
			out = append(out, MonthActuals{Month: m, Values: entry.Flatten()})
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func handleGetMonth(w http.ResponseWriter, r *http.Request) {
	month, err := httpx.Month(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MonthActuals{Month: month, Values: doc.Tracking2026.Entry(month).Flatten()})
}

// handleSetMonth writes every listed key of a month in one change. A null
// value clears the key.
func handleSetMonth(w http.ResponseWriter, r *http.Request) {
	month, err := httpx.Month(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Values map[string]*float64 `json:"values"`
	}
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if len(req.Values) == 0 {
		httpx.Error(w, r, plan.ErrInvalidValue)
		return
	}

	keys := make([]string, 0, len(req.Values))
	for k := range req.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		for _, k := range keys {
			if _, err := plan.SetActual(doc, month, k, req.Values[k]); err != nil {
				return models.Change{}, err
			}
		}
		return models.Change{Kind: models.ChangeActual, Month: month, Target: strings.Join(keys, ",")}, nil
	})
}

func handleClearMonth(w http.ResponseWriter, r *http.Request) {
	month, err := httpx.Month(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.ClearActual(doc, month)
	})
}

func handleReport(w http.ResponseWriter, r *http.Request) {
	month, err := httpx.Month(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	scenario, err := httpx.ScenarioOrBase(r, doc)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	report, err := reconcile.BuildMonthReport(doc, scenario, month)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, report)
}

func handleForecast(w http.ResponseWriter, r *http.Request) {
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	scenario, err := httpx.ScenarioOrBase(r, doc)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	through := reconcile.LastReported(doc)
	if chi.URLParam(r, "month") != "" {
		if through, err = httpx.Month(r); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}
	forecast, err := reconcile.BuildForecast(doc, scenario, through)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, forecast)
}

// ImportResponse reports an uploaded statement and, unless it was a dry
// run, the change that wrote it
type ImportResponse struct {
	Summary *ledger.Summary `json:"summary"`
	Change  *models.Change  `json:"change,omitempty"`
}

// handleImport fills the monthly actuals from a bank statement CSV sent as
// the multipart field "file". ?dry_run=true only reports the totals.
func handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		httpx.ErrorResponse(w, "File too large", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.ErrorResponse(w, "Error reading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" && ext != ".txt" {
		httpx.ErrorResponse(w, "Only CSV statement exports are allowed", http.StatusBadRequest)
		return
	}

	summary, err := ledger.Import(file)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentPlan).Info("statement parsed",
		"file", header.Filename,
		"imported", summary.Stats.Imported,
		"transfers", summary.Stats.Transfers,
		"skipped", summary.Stats.Skipped)

	if r.URL.Query().Get("dry_run") == "true" {
		httpx.WriteJSON(w, http.StatusOK, ImportResponse{Summary: summary})
		return
	}
	change, err := manager.Apply(r.Context(), summary.Reducer())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ImportResponse{Summary: summary, Change: &change})
}
