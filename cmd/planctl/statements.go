package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bizplan/internal/cli"
	"bizplan/internal/models"
	"bizplan/internal/services/statements"
)

var (
	flagKind       string
	flagRegenerate bool
)

var statementsCmd = &cobra.Command{
	Use:   "statements",
	Short: "Print the DRE, DFC or balance sheet of a scenario",
	RunE:  runStatements,
}

func init() {
	statementsCmd.Flags().StringVarP(&flagKind, "kind", "k", string(models.StatementDRE), "Statement: dre, dfc or bp")
	statementsCmd.Flags().BoolVar(&flagRegenerate, "regenerate", false, "Recompute from the current projection instead of the stored statements")
	rootCmd.AddCommand(statementsCmd)
}

func runStatements(cmd *cobra.Command, _ []string) error {
	kind, ok := models.ParseStatementKind(flagKind)
	if !ok {
		return fmt.Errorf("unknown statement %q", flagKind)
	}
	doc, err := loadPlan(cmd.Context())
	if err != nil {
		return err
	}
	scenario, err := scenarioFor(doc)
	if err != nil {
		return err
	}

	fp := statements.Lookup(doc, scenario)
	if flagRegenerate || !fp.Generated {
		if fp, err = statements.Generate(doc, scenario, time.Now()); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("%s  %s 2026", strings.ToUpper(string(kind)), scenario)))
	fmt.Fprint(out, cli.RenderTable(statementTable(fp.Statement(kind))))
	if kind == models.StatementBP {
		if gap := statements.Imbalance(fp); gap != 0 {
			fmt.Fprintln(out, cli.Note("assets and liabilities differ by %s", cli.Money(gap)))
		}
	}
	return nil
}

// statementTable lays a statement out with one column per month and the
// annual figure last
func statementTable(st models.Statement) cli.Table {
	headers := []string{""}
	for _, m := range models.Months {
		headers = append(headers, strings.ToUpper(string(m)))
	}
	annual := "Annual"
	if st.Mode == models.ModeStock {
		annual = "Dec"
	}
	headers = append(headers, annual)

	t := cli.Table{Headers: headers}
	for _, row := range st.Rows {
		cells := []string{row.Label}
		for _, v := range row.Values {
			cells = append(cells, cli.Count(v))
		}
		cells = append(cells, cli.Count(st.Annual(row.Key)))
		t.Rows = append(t.Rows, cells)
	}
	return t
}
