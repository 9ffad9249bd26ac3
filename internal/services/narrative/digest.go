package narrative

import (
	"fmt"
	"strings"

	"bizplan/internal/models"
	"bizplan/internal/services/derive"
	"bizplan/internal/services/projection"
	"bizplan/internal/services/reconcile"
	"bizplan/internal/services/statements"
)

// digest accumulates "label: value" lines under section headings
type digest struct {
	b strings.Builder
}

func (d *digest) section(title string) {
	if d.b.Len() > 0 {
		d.b.WriteByte('\n')
	}
	fmt.Fprintf(&d.b, "## %s\n", title)
}

func (d *digest) line(label, value string) {
	fmt.Fprintf(&d.b, "- %s: %s\n", label, value)
}

// Digest summarizes already computed plan figures for the given slot.
// Only formatted numbers are included, never raw series.
func Digest(doc *models.PlanDocument, slot models.NarrativeSlot) string {
	var d digest

	p := doc.Profile
	d.section("Company")
	d.line("Name", orDash(p.Name))
	d.line("Segment", orDash(p.Segment))
	d.line("City", orDash(p.City))
	d.line("Employees", FormatCount(float64(p.Employees)))

	g := doc.Goals2026
	d.section("Goals 2026")
	d.line("Annual revenue", FormatMoney(g.AnnualRevenue))
	d.line("Net margin", FormatPercent(g.NetMarginPercent))
	d.line("Average ticket", FormatMoney(g.AverageTicket))
	d.line("New customers per month", FormatCount(g.NewCustomersPerMonth))
	d.line("Headcount", FormatCount(float64(g.Headcount)))

	d.section("Actuals 2025")
	revenue2025 := derive.Sum(doc.Baseline2025[models.DriverGrossRevenue])
	d.line("Gross revenue", FormatMoney(revenue2025))
	if revenue2025 != 0 {
		d.line("Growth needed to reach the revenue goal", FormatPercent(derive.PercentChange(g.AnnualRevenue, revenue2025)))
	}

	d.section("Scenarios 2026")
	for _, name := range models.ScenarioNames {
		sd, _ := doc.Scenario(name)
		base := projection.AnnualBase(sd)
		ebitda := derive.EBITDA(base.Revenue, base.VariableCosts, base.FixedCosts)
		marker := ""
		if name == doc.BaseScenario {
			marker = " (base)"
		}
		d.line(string(name)+marker, fmt.Sprintf("revenue %s, variable costs %s, fixed costs %s, EBITDA %s, EBITDA margin %s",
			FormatMoney(base.Revenue),
			FormatMoney(base.VariableCosts),
			FormatMoney(base.FixedCosts),
			FormatMoney(ebitda),
			FormatPercent(derive.MarginPercent(ebitda, base.Revenue)),
		))
	}

	if fp := statements.Lookup(doc, doc.BaseScenario); fp.Generated {
		d.section("Income statement (base scenario)")
		d.line("Net profit", FormatMoney(fp.DRE.Annual(statements.DRENetProfit)))
		d.line("Closing cash", FormatMoney(fp.BP.Annual(statements.BPCash)))
	}

	switch slot {
	case models.SlotTracking, models.SlotAnalysis:
		writeTracking(&d, doc)
	case models.SlotOKRs:
		if len(doc.OKRs) > 0 {
			d.section("Existing objectives")
			for _, o := range doc.OKRs {
				d.line("Objective", o.Objective)
			}
		}
	}

	return d.b.String()
}

func writeTracking(d *digest, doc *models.PlanDocument) {
	var last models.Month
	for _, m := range models.Months {
		if doc.Tracking2026.Entry(m) != nil {
			last = m
		}
	}
	d.section("Tracking 2026")
	if last == "" {
		d.line("Reported months", "0")
		return
	}
	fc, err := reconcile.BuildForecast(doc, doc.BaseScenario, last)
	if err != nil {
		return
	}
	d.line("Reported through", string(last))
	for _, l := range fc.Lines {
		d.line(l.Label, fmt.Sprintf("projected %s, actual to date %s, year-end forecast %s",
			FormatMoney(l.Projected), FormatMoney(l.ActualYTD), FormatMoney(l.Forecast)))
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
