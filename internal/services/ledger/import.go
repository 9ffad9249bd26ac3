package ledger

import (
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"bizplan/internal/models"
	"bizplan/internal/services/plan"
)

// TrackingYear is the only calendar year the tracking grid holds
const TrackingYear = 2026

var ErrNoTransactions = errors.New("ledger: no 2026 transactions to import")

// Stats counts what happened to the rows of an import. Identical rows are
// distinct transactions and are all imported.
type Stats struct {
	Parsed    int `json:"parsed"`
	Skipped   int `json:"skipped"`
	Transfers int `json:"transfers"`
	OutOfYear int `json:"out_of_year"`
	Imported  int `json:"imported"`
}

// MonthTotals are the sums reported for one month. Costs are positive.
type MonthTotals struct {
	Month         models.Month `json:"month"`
	Revenue       float64      `json:"revenue"`
	VariableCosts float64      `json:"variable_costs"`
	FixedCosts    float64      `json:"fixed_costs"`
	Transactions  int          `json:"transactions"`
}

// Summary is a parsed statement aggregated per month, in calendar order
type Summary struct {
	Stats  Stats         `json:"stats"`
	Months []MonthTotals `json:"months"`
}

// Import parses, classifies, filters and aggregates a
// statement export
func Import(r io.Reader) (*Summary, error) {
	transactions, stats, err := Parse(r)
	if err != nil {
		return nil, err
	}
	transactions = Classify(transactions)

	kept := transactions[:0]
	for _, t := range transactions {
		switch {
		case t.Kind == KindTransfer:
			stats.Transfers++
		case t.Date.Year() != TrackingYear:
			stats.OutOfYear++
		default:
			kept = append(kept, t)
		}
	}
	stats.Imported = len(kept)

	return &Summary{Stats: stats, Months: aggregate(kept)}, nil
}

func aggregate(transactions []Transaction) []MonthTotals {
	type sums struct {
		revenue, variable, fixed decimal.Decimal
		count                    int
	}
	var byMonth [12]*sums
	for _, t := range transactions {
		i := int(t.Date.Month()) - 1
		if byMonth[i] == nil {
			byMonth[i] = &sums{}
		}
		s := byMonth[i]
		s.count++
		switch t.Kind {
		case KindRevenue:
			s.revenue = s.revenue.Add(t.Amount)
		case KindVariable:
			s.variable = s.variable.Sub(t.Amount)
		case KindFixed:
			s.fixed = s.fixed.Sub(t.Amount)
		}
	}

	var out []MonthTotals
	for i, s := range byMonth {
		if s == nil {
			continue
		}
		out = append(out, MonthTotals{
			Month:         models.Months[i],
			Revenue:       s.revenue.Round(2).InexactFloat64(),
			VariableCosts: s.variable.Round(2).InexactFloat64(),
			FixedCosts:    s.fixed.Round(2).InexactFloat64(),
			Transactions:  s.count,
		})
	}
	return out
}

// Reducer writes the summary's totals as the revenue, variable cost and
// fixed cost actuals of every month it covers. Other months and custom
// line actuals are left alone.
func (s *Summary) Reducer() plan.Reducer {
	return func(doc *models.PlanDocument) (models.Change, error) {
		if len(s.Months) == 0 {
			return models.Change{}, ErrNoTransactions
		}
		months := make([]string, 0, len(s.Months))
		for _, mt := range s.Months {
			values := []struct {
				key string
				v   float64
			}{
				{plan.ActualRevenue, mt.Revenue},
				{plan.ActualVariableCosts, mt.VariableCosts},
				{plan.ActualFixedCosts, mt.FixedCosts},
			}
			for _, kv := range values {
				if _, err := plan.SetActual(doc, mt.Month, kv.key, models.Float(kv.v)); err != nil {
					return models.Change{}, err
				}
			}
			months = append(months, string(mt.Month))
		}

		change := models.Change{Kind: models.ChangeActualImport, Target: strings.Join(months, ",")}
		if len(s.Months) == 1 {
			change.Month = s.Months[0].Month
		}
		return change, nil
	}
}
