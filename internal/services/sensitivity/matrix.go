// Package sensitivity perturbs a scenario's annual base to show how price,
// volume and single levers move profit.
package sensitivity

import (
	"errors"

	"bizplan/internal/models"
	"bizplan/internal/services/derive"
	"bizplan/internal/services/projection"
)

// DefaultRange is the perturbation range in percent when none is given
const DefaultRange = 20.0

// ErrInvalidRange is returned for a range outside (0, 100]
var ErrInvalidRange = errors.New("range must be greater than 0 and at most 100")

// Cell computes the outcome for one price step and one volume step, both as
// fractions. Variable cost follows volume only; fixed cost never moves.
func Cell(base models.FinancialBase, priceStep, volumeStep float64) models.SensitivityCell {
	revenue := base.Revenue * (1 + priceStep) * (1 + volumeStep)
	variable := base.VariableCosts * (1 + volumeStep)
	ebitda := derive.EBITDA(revenue, variable, base.FixedCosts)
	net := derive.SimplifiedNetProfit(ebitda)
	return models.SensitivityCell{
		PriceStep:     priceStep,
		VolumeStep:    volumeStep,
		Revenue:       revenue,
		VariableCosts: variable,
		FixedCosts:    base.FixedCosts,
		EBITDA:        ebitda,
		NetProfit:     net,
		NetMargin:     derive.MarginPercent(net, revenue),
	}
}

// Steps returns the five symmetric steps, as fractions, for a range in percent
func Steps(rangePct float64) [5]float64 {
	r := rangePct / 100
	return [5]float64{-r, -r / 2, 0, r / 2, r}
}

// BuildMatrix varies price across columns and volume across rows
func BuildMatrix(base models.FinancialBase, rangePct float64) (*models.SensitivityMatrix, error) {
	// written so NaN fails too
	if !(rangePct > 0 && rangePct <= 100) {
		return nil, ErrInvalidRange
	}
	steps := Steps(rangePct)
	m := &models.SensitivityMatrix{
		Range:       rangePct,
		PriceSteps:  steps,
		VolumeSteps: steps,
		Baseline:    Cell(base, 0, 0),
	}
	for row, v := range steps {
		for col, p := range steps {
			m.Cells[row][col] = Cell(base, p, v)
		}
	}
	return m, nil
}

// ScenarioMatrix builds the matrix from a scenario's cached annual totals
func ScenarioMatrix(sd *models.ScenarioData, rangePct float64) (*models.SensitivityMatrix, error) {
	return BuildMatrix(projection.AnnualBase(sd), rangePct)
}

// SafetyMargin reports break-even revenue and the share of revenue above it
func SafetyMargin(base models.FinancialBase) models.SafetyMarginResult {
	rate := derive.ContributionMarginRate(base.Revenue, base.VariableCosts)
	breakeven := derive.BreakevenRevenue(base.FixedCosts, rate)
	return models.SafetyMarginResult{
		Revenue:                base.Revenue,
		ContributionMarginRate: rate,
		BreakevenRevenue:       breakeven,
		SafetyMarginPercent:    derive.SafetyMargin(base.Revenue, breakeven),
	}
}
