package models

import "time"

// ChangeKind names the reducer that produced a change
type ChangeKind string

const (
	ChangeReplace         ChangeKind = "plan.replace"
	ChangeProfile         ChangeKind = "plan.profile"
	ChangeGoals           ChangeKind = "plan.goals"
	ChangeBaseScenario    ChangeKind = "plan.base_scenario"
	ChangeBaseline        ChangeKind = "baseline.value"
	ChangeAssumptions     ChangeKind = "plan.assumptions"
	ChangeGrowth          ChangeKind = "scenario.growth"
	ChangeInputMode       ChangeKind = "scenario.input_mode"
	ChangeDriver          ChangeKind = "scenario.driver"
	ChangeCopyScenario    ChangeKind = "scenario.copy"
	ChangeLineItemAdd     ChangeKind = "line_item.add"
	ChangeLineItemUpdate  ChangeKind = "line_item.update"
	ChangeLineItemRemove  ChangeKind = "line_item.remove"
	ChangeLineItemRestore ChangeKind = "line_item.restore"
	ChangeActual          ChangeKind = "tracking.actual"
	ChangeActualClear     ChangeKind = "tracking.clear"
	ChangeActualImport    ChangeKind = "tracking.import"
	ChangeStatements      ChangeKind = "statements.generate"
	ChangePricingSave     ChangeKind = "pricing.save"
	ChangePricingUpdate   ChangeKind = "pricing.update"
	ChangePricingDelete   ChangeKind = "pricing.delete"
	ChangeSuggestions     ChangeKind = "suggestions.merge"
	ChangeNarrative       ChangeKind = "narrative.store"
	ChangeOKRAdd          ChangeKind = "okr.add"
	ChangeOKRDelete       ChangeKind = "okr.delete"
	ChangeKPIAdd          ChangeKind = "kpi.add"
	ChangeKPIDelete       ChangeKind = "kpi.delete"
	ChangeActionAdd       ChangeKind = "action.add"
	ChangeActionStatus    ChangeKind = "action.status"
	ChangeActionDelete    ChangeKind = "action.delete"
)

// Change describes what a reducer did to the plan document
type Change struct {
	Kind     ChangeKind   `json:"kind"`
	Scenario ScenarioName `json:"scenario,omitempty"`
	Month    Month        `json:"month,omitempty"`
	Target   string       `json:"target,omitempty"`

	// Recomputed is set when the scenario's projected series were rebuilt
	Recomputed bool      `json:"recomputed"`
	At         time.Time `json:"at"`
}
