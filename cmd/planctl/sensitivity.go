package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bizplan/internal/cli"
	"bizplan/internal/models"
	"bizplan/internal/services/projection"
	"bizplan/internal/services/sensitivity"
)

var flagRange float64

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "Net profit across price and volume changes, with the safety margin",
	RunE:  runSensitivity,
}

func init() {
	sensitivityCmd.Flags().Float64VarP(&flagRange, "range", "r", 20, "Largest price and volume change, in percent")
	rootCmd.AddCommand(sensitivityCmd)
}

func runSensitivity(cmd *cobra.Command, _ []string) error {
	doc, err := loadPlan(cmd.Context())
	if err != nil {
		return err
	}
	scenario, err := scenarioFor(doc)
	if err != nil {
		return err
	}
	sd, _ := doc.Scenario(scenario)
	base := projection.AnnualBase(sd)

	m, err := sensitivity.BuildMatrix(base, flagRange)
	if err != nil {
		return err
	}
	safety := sensitivity.SafetyMargin(base)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("SENSITIVITY  %s ±%s", scenario, cli.Percent(flagRange))))
	fmt.Fprint(out, cli.RenderTable(matrixTable(m)))
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(safetyTable(safety)))
	return nil
}

// matrixTable shows annual net profit; rows vary volume, columns vary price
func matrixTable(m *models.SensitivityMatrix) cli.Table {
	headers := []string{"volume \\ price"}
	for _, p := range m.PriceSteps {
		headers = append(headers, cli.Percent(p*100))
	}
	t := cli.Table{Title: "Annual net profit", Headers: headers}
	for i, v := range m.VolumeSteps {
		row := []string{cli.Percent(v * 100)}
		for j := range m.PriceSteps {
			np := m.Cells[i][j].NetProfit
			row = append(row, cli.Signed(np, cli.Count(np)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func safetyTable(s models.SafetyMarginResult) cli.Table {
	return cli.Table{
		Title:   "Break-even",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Revenue", cli.Money(s.Revenue)},
			{"Contribution margin", cli.Percent(s.ContributionMarginRate * 100)},
			{"Break-even revenue", cli.Money(s.BreakevenRevenue)},
			cli.Separator,
			{"Safety margin", cli.Signed(s.SafetyMarginPercent, cli.Percent(s.SafetyMarginPercent))},
		},
	}
}
