// Package reconcile compares monthly actuals against the active scenario and
// blends them into a year-end forecast.
package reconcile

import "math"

// Status classifies a variance for display
type Status string

const (
	StatusGood    Status = "good"
	StatusBad     Status = "bad"
	StatusNeutral Status = "neutral"
	StatusNoData  Status = "nodata"
)

// RowKind sets the polarity of a row: above plan is good for revenue rows
// and bad for cost rows.
type RowKind string

const (
	KindRevenue RowKind = "revenue"
	KindCost    RowKind = "cost"
)

// NeutralBand is the absolute variance, in percent, treated as on plan
const NeutralBand = 5.0

// Variance is the signed deviation of an actual from its projection
type Variance struct {
	Percent float64 `json:"percent"`
	// Infinite is +1 or -1 when the projection was zero and the actual was not
	Infinite int    `json:"infinite"`
	Status   Status `json:"status"`
}

// Compare computes (actual - projected) / |projected| x 100 and its status.
// Missing values yield nodata. A zero projection yields an infinite sentinel
// instead of dividing by zero.
func Compare(actual, projected *float64, kind RowKind) Variance {
	if actual == nil || projected == nil {
		return Variance{Status: StatusNoData}
	}
	a, p := *actual, *projected

	if p == 0 {
		switch {
		case a > 0:
			return Variance{Infinite: 1, Status: polarity(1, kind)}
		case a < 0:
			return Variance{Infinite: -1, Status: polarity(-1, kind)}
		}
		return Variance{Status: StatusNeutral}
	}

	pct := (a - p) / math.Abs(p) * 100
	v := Variance{Percent: pct}
	switch {
	case math.Abs(pct) <= NeutralBand:
		v.Status = StatusNeutral
	case pct > 0:
		v.Status = polarity(1, kind)
	default:
		v.Status = polarity(-1, kind)
	}
	return v
}

// polarity maps the direction of a deviation to a status for the row kind
func polarity(sign int, kind RowKind) Status {
	favorable := sign > 0
	if kind == KindCost {
		favorable = !favorable
	}
	if favorable {
		return StatusGood
	}
	return StatusBad
}
