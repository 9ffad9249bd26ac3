package models

import "strings"

// customKeyPrefix tags custom line item values in the flat export format
const customKeyPrefix = "custom_"

// ActualEntry is the sparse record of reported values for one month.
// A nil field means "not yet reported".
type ActualEntry struct {
	Revenue       *float64 `json:"revenue"`
	VariableCosts *float64 `json:"variable_costs"`
	FixedCosts    *float64 `json:"fixed_costs"`

	// Custom maps a CustomLineItem ID to its reported value
	Custom map[string]*float64 `json:"custom,omitempty"`
}

// CustomValue returns the reported value for a custom line item
func (e *ActualEntry) CustomValue(id string) (float64, bool) {
	if e == nil || e.Custom == nil {
		return 0, false
	}
	v, ok := e.Custom[id]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// IsEmpty reports whether nothing has been reported for the month
func (e *ActualEntry) IsEmpty() bool {
	if e == nil {
		return true
	}
	if e.Revenue != nil || e.VariableCosts != nil || e.FixedCosts != nil {
		return false
	}
	for _, v := range e.Custom {
		if v != nil {
			return false
		}
	}
	return true
}

// Flatten renders the entry with custom values under "custom_<id>" keys
func (e *ActualEntry) Flatten() map[string]*float64 {
	out := map[string]*float64{
		"revenue":        nil,
		"variable_costs": nil,
		"fixed_costs":    nil,
	}
	if e == nil {
		return out
	}
	out["revenue"] = e.Revenue
	out["variable_costs"] = e.VariableCosts
	out["fixed_costs"] = e.FixedCosts
	for id, v := range e.Custom {
		out[CustomKey(id)] = v
	}
	return out
}

// CustomKey returns the flat key for a custom line item ID
func CustomKey(id string) string {
	return customKeyPrefix + id
}

// ParseCustomKey extracts the line item ID from a flat "custom_<id>" key
func ParseCustomKey(key string) (string, bool) {
	if !strings.HasPrefix(key, customKeyPrefix) || len(key) == len(customKeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, customKeyPrefix), true
}

// Tracking2026 holds the monthly actuals
type Tracking2026 map[Month]*ActualEntry

// Entry returns the entry for m, or nil when nothing was reported
func (t Tracking2026) Entry(m Month) *ActualEntry {
	if t == nil {
		return nil
	}
	return t[m]
}

// Normalize drops unknown months and empty entries
func (t Tracking2026) Normalize() Tracking2026 {
	out := make(Tracking2026)
	for m, e := range t {
		if !m.Valid() || e.IsEmpty() {
			continue
		}
		out[m] = e
	}
	return out
}
