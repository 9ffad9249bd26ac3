// Package derive is the single library of financial derivations shared by
// every view: series folds, margins, unit economics and break-even.
package derive

import "bizplan/internal/models"

// Sum adds every month, treating unset months as zero
func Sum(s models.MonthlySeries) float64 {
	var total float64
	for _, m := range models.Months {
		total += s.Value(m)
	}
	return total
}

// SumTo adds January through m inclusive
func SumTo(s models.MonthlySeries, m models.Month) float64 {
	end := m.Index()
	var total float64
	for i := 0; i <= end; i++ {
		total += s.Value(models.Months[i])
	}
	return total
}

// Present counts the months that hold a value
func Present(s models.MonthlySeries) int {
	n := 0
	for _, m := range models.Months {
		if _, ok := s.Get(m); ok {
			n++
		}
	}
	return n
}

// Average divides the sum by the number of present months, not by 12.
// Returns 0 when nothing has been entered.
func Average(s models.MonthlySeries) float64 {
	n := Present(s)
	if n == 0 {
		return 0
	}
	return Sum(s) / float64(n)
}

// AddSeries returns the month-wise sum of the given series. A month is set
// in the result when it is set in any input.
func AddSeries(series ...models.MonthlySeries) models.MonthlySeries {
	out := models.NewSeries()
	for _, m := range models.Months {
		var total float64
		present := false
		for _, s := range series {
			if v, ok := s.Get(m); ok {
				total += v
				present = true
			}
		}
		if present {
			out.Set(m, total)
		}
	}
	return out
}

// ScaleSeries multiplies every present month by factor
func ScaleSeries(s models.MonthlySeries, factor float64) models.MonthlySeries {
	out := models.NewSeries()
	for _, m := range models.Months {
		if v, ok := s.Get(m); ok {
			out.Set(m, v*factor)
		}
	}
	return out
}
