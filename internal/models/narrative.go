package models

import "time"

// NarrativeSlot names an AI analysis panel. Each slot allows one request in flight.
type NarrativeSlot string

const (
	SlotOKRs      NarrativeSlot = "okrs"
	SlotAnalysis  NarrativeSlot = "analysis"
	SlotTracking  NarrativeSlot = "tracking"
	SlotScenarios NarrativeSlot = "scenarios"
)

// NarrativeSlots lists the known slots
var NarrativeSlots = []NarrativeSlot{SlotOKRs, SlotAnalysis, SlotTracking, SlotScenarios}

// ParseNarrativeSlot validates a slot name
func ParseNarrativeSlot(s string) (NarrativeSlot, bool) {
	for _, slot := range NarrativeSlots {
		if string(slot) == s {
			return slot, true
		}
	}
	return "", false
}

// Narrative is the last advisory text produced for a slot
type Narrative struct {
	Slot        NarrativeSlot `json:"slot"`
	Text        string        `json:"text"`
	HTML        string        `json:"html,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// OKRSuggestion is the raw shape returned for the okrs slot
type OKRSuggestion struct {
	Objective  string   `json:"objective"`
	KeyResults []string `json:"key_results"`
}

// KPISuggestion is the raw shape of a suggested indicator
type KPISuggestion struct {
	Name      string  `json:"name"`
	Target    float64 `json:"target"`
	Unit      string  `json:"unit"`
	Frequency string  `json:"frequency"`
}

// ActionSuggestion is the raw shape of a suggested action plan task
type ActionSuggestion struct {
	Title string `json:"title"`
	Owner string `json:"owner"`
	Due   string `json:"due"`
}

// Suggestions are candidate structures produced by the narrative service.
// They are never applied directly, only through the plan reducers.
type Suggestions struct {
	OKRs            []OKRSuggestion    `json:"okrs,omitempty"`
	KPIs            []KPISuggestion    `json:"kpis,omitempty"`
	AnalysisText    string             `json:"analysisText,omitempty"`
	ActionPlanItems []ActionSuggestion `json:"actionPlanItems,omitempty"`
}

// NarrativeResult is what a narrative request returns to the caller
type NarrativeResult struct {
	Slot        NarrativeSlot `json:"slot"`
	Narrative   Narrative     `json:"narrative"`
	Suggestions Suggestions   `json:"suggestions"`
	Attempts    int           `json:"attempts"`
}
