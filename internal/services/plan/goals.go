package plan

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"bizplan/internal/models"
)

// Action plan statuses
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// AddOKR appends an objective. Blank key results are dropped.
func AddOKR(doc *models.PlanDocument, objective string, keyResults []string, source string) (models.Change, error) {
	objective = strings.TrimSpace(objective)
	if objective == "" {
		return models.Change{}, ErrInvalidValue
	}
	krs := make([]string, 0, len(keyResults))
	for _, kr := range keyResults {
		if kr = strings.TrimSpace(kr); kr != "" {
			krs = append(krs, kr)
		}
	}
	okr := models.OKR{ID: uuid.New().String(), Objective: objective, KeyResults: krs, Source: source}
	doc.OKRs = append(doc.OKRs, okr)
	return models.Change{Kind: models.ChangeOKRAdd, Target: okr.ID}, nil
}

// DeleteOKR removes an objective by ID
func DeleteOKR(doc *models.PlanDocument, id string) (models.Change, error) {
	for i, o := range doc.OKRs {
		if o.ID == id {
			doc.OKRs = append(doc.OKRs[:i:i], doc.OKRs[i+1:]...)
			return models.Change{Kind: models.ChangeOKRDelete, Target: id}, nil
		}
	}
	return models.Change{}, ErrItemNotFound
}

// AddKPI appends an indicator
func AddKPI(doc *models.PlanDocument, k models.KPISuggestion, source string) (models.Change, error) {
	name := strings.TrimSpace(k.Name)
	if name == "" || !finite(k.Target) {
		return models.Change{}, ErrInvalidValue
	}
	kpi := models.KPI{
		ID:        uuid.New().String(),
		Name:      name,
		Target:    k.Target,
		Unit:      strings.TrimSpace(k.Unit),
		Frequency: strings.TrimSpace(k.Frequency),
		Source:    source,
	}
	doc.KPIs = append(doc.KPIs, kpi)
	return models.Change{Kind: models.ChangeKPIAdd, Target: kpi.ID}, nil
}

// DeleteKPI removes an indicator by ID
func DeleteKPI(doc *models.PlanDocument, id string) (models.Change, error) {
	for i, k := range doc.KPIs {
		if k.ID == id {
			doc.KPIs = append(doc.KPIs[:i:i], doc.KPIs[i+1:]...)
			return models.Change{Kind: models.ChangeKPIDelete, Target: id}, nil
		}
	}
	return models.Change{}, ErrItemNotFound
}

// AddActionItem appends a task in the todo state
func AddActionItem(doc *models.PlanDocument, a models.ActionSuggestion, source string) (models.Change, error) {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return models.Change{}, ErrInvalidValue
	}
	item := models.ActionPlanItem{
		ID:     uuid.New().String(),
		Title:  title,
		Owner:  strings.TrimSpace(a.Owner),
		Due:    strings.TrimSpace(a.Due),
		Status: StatusTodo,
		Source: source,
	}
	doc.ActionPlan = append(doc.ActionPlan, item)
	return models.Change{Kind: models.ChangeActionAdd, Target: item.ID}, nil
}

// SetActionStatus moves a task between todo, in_progress and done
func SetActionStatus(doc *models.PlanDocument, id, status string) (models.Change, error) {
	switch status {
	case StatusTodo, StatusInProgress, StatusDone:
	default:
		return models.Change{}, ErrInvalidValue
	}
	for i := range doc.ActionPlan {
		if doc.ActionPlan[i].ID == id {
			doc.ActionPlan[i].Status = status
			return models.Change{Kind: models.ChangeActionStatus, Target: id}, nil
		}
	}
	return models.Change{}, ErrItemNotFound
}

// DeleteActionItem removes a task by ID
func DeleteActionItem(doc *models.PlanDocument, id string) (models.Change, error) {
	for i, a := range doc.ActionPlan {
		if a.ID == id {
			doc.ActionPlan = append(doc.ActionPlan[:i:i], doc.ActionPlan[i+1:]...)
			return models.Change{Kind: models.ChangeActionDelete, Target: id}, nil
		}
	}
	return models.Change{}, ErrItemNotFound
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// MergeSuggestions applies AI candidates through the same reducers users
// call. Invalid candidates and ones duplicating an existing entry are
// skipped. The number of accepted candidates is returned with the change.
func MergeSuggestions(doc *models.PlanDocument, s models.Suggestions) (models.Change, int) {
	accepted := 0

okrs:
	for _, o := range s.OKRs {
		for _, existing := range doc.OKRs {
			if sameText(existing.Objective, o.Objective) {
				continue okrs
			}
		}
		if _, err := AddOKR(doc, o.Objective, o.KeyResults, models.SourceAI); err == nil {
			accepted++
		}
	}

kpis:
	for _, k := range s.KPIs {
		for _, existing := range doc.KPIs {
			if sameText(existing.Name, k.Name) {
				continue kpis
			}
		}
		if _, err := AddKPI(doc, k, models.SourceAI); err == nil {
			accepted++
		}
	}

actions:
	for _, a := range s.ActionPlanItems {
		for _, existing := range doc.ActionPlan {
			if sameText(existing.Title, a.Title) {
				continue actions
			}
		}
		if _, err := AddActionItem(doc, a, models.SourceAI); err == nil {
			accepted++
		}
	}

	return models.Change{Kind: models.ChangeSuggestions, Target: strconv.Itoa(accepted)}, accepted
}

// StoreNarrative keeps the latest advisory text of a slot
func StoreNarrative(doc *models.PlanDocument, n models.Narrative) (models.Change, error) {
	if _, ok := models.ParseNarrativeSlot(string(n.Slot)); !ok {
		return models.Change{}, ErrInvalidValue
	}
	doc.Narratives[n.Slot] = n
	return models.Change{Kind: models.ChangeNarrative, Target: string(n.Slot)}, nil
}
