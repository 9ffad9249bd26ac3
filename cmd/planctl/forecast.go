package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bizplan/internal/cli"
	"bizplan/internal/models"
	"bizplan/internal/services/reconcile"
)

var flagThrough string

var forecastCmd = &cobra.Command{
	Use:   "forecast [month]",
	Short: "Year-end outlook blending reported actuals with the projection",
	Long: "Year-end outlook blending reported actuals with the projection.\n" +
		"With a month argument the monthly variance report is printed as well.",
	Args: cobra.MaximumNArgs(1),
	RunE: runForecast,
}

func init() {
	forecastCmd.Flags().StringVar(&flagThrough, "through", "", "Last month whose actuals count (default the last reported month)")
	rootCmd.AddCommand(forecastCmd)
}

func parseMonth(s string) (models.Month, error) {
	m, ok := models.ParseMonth(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownMonth, s)
	}
	return m, nil
}

func runForecast(cmd *cobra.Command, args []string) error {
	doc, err := loadPlan(cmd.Context())
	if err != nil {
		return err
	}
	scenario, err := scenarioFor(doc)
	if err != nil {
		return err
	}

	through := reconcile.LastReported(doc)
	if flagThrough != "" {
		if through, err = parseMonth(flagThrough); err != nil {
			return err
		}
	}
	f, err := reconcile.BuildForecast(doc, scenario, through)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("FORECAST  %s through %s", scenario, through)))
	fmt.Fprint(out, cli.RenderTable(forecastTable(f)))

	if len(args) == 1 {
		month, err := parseMonth(args[0])
		if err != nil {
			return err
		}
		report, err := reconcile.BuildMonthReport(doc, scenario, month)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, cli.RenderTable(reportTable(report)))
	}
	return nil
}

func forecastTable(f *reconcile.Forecast) cli.Table {
	t := cli.Table{Headers: []string{"", "Projected", "Actual YTD", "Forecast", "Months"}}
	for _, l := range f.Lines {
		t.Rows = append(t.Rows, []string{
			l.Label,
			cli.Money(l.Projected),
			cli.Money(l.ActualYTD),
			cli.Money(l.Forecast),
			fmt.Sprintf("%d", l.ReportedMonths),
		})
	}
	return t
}

func optional(v *float64) string {
	if v == nil {
		return cli.Muted("-")
	}
	return cli.Money(*v)
}

func reportTable(r *reconcile.MonthReport) cli.Table {
	t := cli.Table{
		Title:   fmt.Sprintf("Variance %s", r.Month),
		Headers: []string{"", "Projected", "Actual", "Variance", "Status"},
	}
	for _, row := range r.Rows {
		variance := cli.Muted("-")
		switch {
		case row.Variance.Infinite > 0:
			variance = "+∞"
		case row.Variance.Infinite < 0:
			variance = "-∞"
		case row.Variance.Status != reconcile.StatusNoData:
			variance = cli.Percent(row.Variance.Percent)
		}
		t.Rows = append(t.Rows, []string{
			row.Label,
			optional(row.Projected),
			optional(row.Actual),
			variance,
			cli.Status(string(row.Variance.Status)),
		})
	}
	return t
}
