package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bizplan/internal/cli"
	"bizplan/internal/log"
	"bizplan/internal/services/ledger"
	"bizplan/internal/services/planstore"
)

var flagDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <statement.csv>",
	Short: "Fill monthly actuals from a bank statement export",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Show the monthly totals without saving them")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	summary, err := ledger.Import(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, cli.RenderTable(importTable(summary)))
	st := summary.Stats
	fmt.Fprintln(out, cli.Note("%d imported, %d transfers, %d outside 2026, %d unreadable",
		st.Imported, st.Transfers, st.OutOfYear, st.Skipped))
	if flagDryRun {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	backend, err := planstore.OpenBackend(ctx, cfg.StoreOptions(), store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	lc := log.DefaultConfig()
	lc.Output = cmd.ErrOrStderr()
	lc.Level = log.ParseLevel("warn")
	lc.Component = log.ComponentCLI
	m, err := planstore.Open(ctx, backend, planstore.ManagerOptions{Logger: log.New(lc)})
	if err != nil {
		backend.Close()
		return err
	}
	change, err := m.Apply(ctx, summary.Reducer())
	if cerr := m.Close(ctx); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.Note("actuals saved for %s", change.Target))
	return nil
}

func importTable(s *ledger.Summary) cli.Table {
	t := cli.Table{
		Title:   "Statement import",
		Headers: []string{"Month", "Revenue", "Variable costs", "Fixed costs", "Transactions"},
	}
	for _, m := range s.Months {
		t.Rows = append(t.Rows, []string{
			string(m.Month),
			cli.Money(m.Revenue),
			cli.Money(m.VariableCosts),
			cli.Money(m.FixedCosts),
			cli.Count(float64(m.Transactions)),
		})
	}
	return t
}
