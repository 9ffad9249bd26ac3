package plan

import "bizplan/internal/models"

// Actual field keys accepted by SetActual besides custom_<id>
const (
	ActualRevenue       = "revenue"
	ActualVariableCosts = "variable_costs"
	ActualFixedCosts    = "fixed_costs"
)

// knownLineItem reports whether any scenario has ever held the item
func knownLineItem(doc *models.PlanDocument, id string) bool {
	for _, name := range models.ScenarioNames {
		sd, _ := doc.Scenario(name)
		for _, kind := range []models.LineItemKind{models.LineItemFixed, models.LineItemVariable} {
			if indexOf(*sd.Projection.Items(kind), id) >= 0 || indexOf(*sd.Projection.RemovedItems(kind), id) >= 0 {
				return true
			}
		}
	}
	return false
}

// SetActual records one reported value for a month. key is revenue,
// variable_costs, fixed_costs or custom_<line item id>; nil clears it.
func SetActual(doc *models.PlanDocument, m models.Month, key string, v *float64) (models.Change, error) {
	if !m.Valid() {
		return models.Change{}, ErrUnknownMonth
	}
	if err := checkValue(v); err != nil {
		return models.Change{}, err
	}

	entry := doc.Tracking2026.Entry(m)
	if entry == nil {
		entry = &models.ActualEntry{}
	}

	switch key {
	case ActualRevenue:
		entry.Revenue = v
	case ActualVariableCosts:
		entry.VariableCosts = v
	case ActualFixedCosts:
		entry.FixedCosts = v
	default:
		id, ok := models.ParseCustomKey(key)
		if !ok {
			return models.Change{}, ErrInvalidValue
		}
		if !knownLineItem(doc, id) {
			return models.Change{}, ErrLineItemNotFound
		}
		if entry.Custom == nil {
			entry.Custom = map[string]*float64{}
		}
		if v == nil {
			delete(entry.Custom, id)
		} else {
			entry.Custom[id] = v
		}
	}

	if entry.IsEmpty() {
		delete(doc.Tracking2026, m)
	} else {
		doc.Tracking2026[m] = entry
	}
	return models.Change{Kind: models.ChangeActual, Month: m, Target: key}, nil
}

// ClearActual drops everything reported for a month
func ClearActual(doc *models.PlanDocument, m models.Month) (models.Change, error) {
	if !m.Valid() {
		return models.Change{}, ErrUnknownMonth
	}
	delete(doc.Tracking2026, m)
	return models.Change{Kind: models.ChangeActualClear, Month: m}, nil
}
