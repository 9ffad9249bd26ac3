// Package plan holds the reducers that mutate a plan document. Every edit to
// planning data goes through one of them and reports what it did as a
// models.Change.
package plan

import (
	"errors"
	"math"

	"bizplan/internal/models"
)

var (
	ErrUnknownScenario     = models.ErrUnknownScenario
	ErrUnknownMonth        = models.ErrUnknownMonth
	ErrUnknownDriver       = errors.New("unknown driver")
	ErrUnknownKind         = errors.New("unknown line item kind")
	ErrLineItemNotFound    = errors.New("line item not found")
	ErrPricingItemNotFound = errors.New("pricing item not found")
	ErrItemNotFound        = errors.New("item not found")
	ErrInvalidValue        = errors.New("invalid value")
	ErrSameScenario        = errors.New("source and target scenario are the same")
)

func scenario(doc *models.PlanDocument, name models.ScenarioName) (*models.ScenarioData, error) {
	sd, ok := doc.Scenario(name)
	if !ok {
		return nil, ErrUnknownScenario
	}
	return sd, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// checkValue accepts nil (a cleared month) or any finite number
func checkValue(v *float64) error {
	if v != nil && !finite(*v) {
		return ErrInvalidValue
	}
	return nil
}

func checkSeries(s models.MonthlySeries) error {
	for m, v := range s {
		if !m.Valid() {
			return ErrUnknownMonth
		}
		if err := checkValue(v); err != nil {
			return err
		}
	}
	return nil
}
