package reconcile

import (
	"bizplan/internal/models"
	"bizplan/internal/services/derive"
)

// ForecastLine carries the three annual views of one figure
type ForecastLine struct {
	Key   string `json:"key"`
	Label string `json:"label"`

	Projected float64 `json:"projected"`
	ActualYTD float64 `json:"actual_ytd"`
	Forecast  float64 `json:"forecast"`

	// Blended is the month-by-month series behind Forecast
	Blended        [12]float64 `json:"blended"`
	ReportedMonths int         `json:"reported_months"`
}

// Forecast is the year-end outlook as of a selected month
type Forecast struct {
	Scenario models.ScenarioName `json:"scenario"`
	Through  models.Month        `json:"through"`
	Lines    []ForecastLine      `json:"lines"`
}

// Line returns the forecast line with the given key
func (f *Forecast) Line(key string) (ForecastLine, bool) {
	for _, l := range f.Lines {
		if l.Key == key {
			return l, true
		}
	}
	return ForecastLine{}, false
}

// monthFigures holds projected and actual values of every line for one month.
// A derived actual is present only when all of its inputs are.
type monthFigures struct {
	projected [5]float64
	actual    [5]*float64
}

var forecastLines = []struct{ key, label string }{
	{RowRevenue, "Revenue"},
	{RowVariableCosts, "Variable costs"},
	{RowFixedCosts, "Fixed costs"},
	{RowContributionMargin, "Contribution margin"},
	{RowEBITDA, "EBITDA"},
}

func figuresFor(sd *models.ScenarioData, entry *models.ActualEntry, m models.Month) monthFigures {
	rev := sd.ReceitaProjetada.Value(m)
	vc := sd.CustosProjetados.Value(m)
	fc := sd.DespesasProjetadas.Value(m)

	f := monthFigures{projected: [5]float64{rev, vc, fc, derive.ContributionMargin(rev, vc), derive.EBITDA(rev, vc, fc)}}
	if entry == nil {
		return f
	}
	f.actual[0] = entry.Revenue
	f.actual[1] = entry.VariableCosts
	f.actual[2] = entry.FixedCosts
	if entry.Revenue != nil && entry.VariableCosts != nil {
		cm := derive.ContributionMargin(*entry.Revenue, *entry.VariableCosts)
		f.actual[3] = &cm
		if entry.FixedCosts != nil {
			e := derive.EBITDA(*entry.Revenue, *entry.VariableCosts, *entry.FixedCosts)
			f.actual[4] = &e
		}
	}
	return f
}

// LastReported is the latest month with any actual, or December when none
func LastReported(doc *models.PlanDocument) models.Month {
	for i := len(models.Months) - 1; i >= 0; i-- {
		if !doc.Tracking2026.Entry(models.Months[i]).IsEmpty() {
			return models.Months[i]
		}
	}
	return models.Dec
}

// BuildForecast blends actuals and projections. Up to and including through,
// a month uses its actual when reported and the projection otherwise; later
// months always use the projection.
func BuildForecast(doc *models.PlanDocument, scenario models.ScenarioName, through models.Month) (*Forecast, error) {
	sd, ok := doc.Scenario(scenario)
	if !ok {
		return nil, ErrUnknownScenario
	}
	cutoff := through.Index()
	if cutoff < 0 {
		return nil, ErrUnknownMonth
	}

	lines := make([]ForecastLine, len(forecastLines))
	for i, l := range forecastLines {
		lines[i] = ForecastLine{Key: l.key, Label: l.label}
	}

	for mi, m := range models.Months {
		f := figuresFor(sd, doc.Tracking2026.Entry(m), m)
		for i := range lines {
			proj := f.projected[i]
			lines[i].Projected += proj

			value := proj
			if mi <= cutoff && f.actual[i] != nil {
				value = *f.actual[i]
				lines[i].ActualYTD += value
				lines[i].ReportedMonths++
			}
			lines[i].Blended[mi] = value
			lines[i].Forecast += value
		}
	}

	return &Forecast{Scenario: scenario, Through: through, Lines: lines}, nil
}
