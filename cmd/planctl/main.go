// Command planctl inspects and maintains a business plan from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bizplan/internal/config"
	"bizplan/internal/models"
	"bizplan/internal/services/plan"
	"bizplan/internal/services/planstore"
	"bizplan/internal/services/storage"
)

var (
	flagDataDir  string
	flagStore    string
	flagScenario string
)

var rootCmd = &cobra.Command{
	Use:           "planctl",
	Short:         "Business plan CLI",
	Long:          "Inspect statements, sensitivity, forecasts and pricing of a 2026 business plan.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Data directory (default PLANNER_DATA_DIR or ./data)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Plan store: "+strings.Join(planstore.Kinds, ", "))
	rootCmd.PersistentFlags().StringVarP(&flagScenario, "scenario", "s", "", "Scenario (default the plan's base scenario)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the persistent flags over it
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		cfg.DataDirectory = flagDataDir
		cfg.BackupDirectory = filepath.Join(flagDataDir, "backups")
		cfg.SQLitePath = filepath.Join(flagDataDir, "bizplan.db")
	}
	if flagStore != "" {
		cfg.Store = flagStore
	}
	return cfg, nil
}

// readPassword takes PLANNER_PASSWORD or prompts on the terminal
func readPassword(cfg *config.Config, prompt string) (string, error) {
	if cfg.Password != "" {
		return cfg.Password, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal to prompt for a password, set PLANNER_PASSWORD")
	}
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// openStorage opens the data directory, unlocking it when encrypted
func openStorage(cfg *config.Config) (*storage.Storage, error) {
	store, err := storage.New(cfg.DataDirectory)
	if err != nil {
		return nil, err
	}
	if st := store.Status(); st.Encrypted && !st.Unlocked {
		pw, err := readPassword(cfg, "Password: ")
		if err != nil {
			return nil, err
		}
		if err := store.Unlock(pw); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// readPlan loads the plan read-only. A store without a saved plan yields an
// empty document.
func readPlan(ctx context.Context, cfg *config.Config, store *storage.Storage) (*models.PlanDocument, error) {
	backend, err := planstore.OpenBackend(ctx, cfg.StoreOptions(), store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer backend.Close()

	doc := models.NewPlanDocument()
	data, err := backend.Load(ctx)
	switch {
	case errors.Is(err, planstore.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load plan: %w", err)
	default:
		if doc, err = models.DecodePlan(data); err != nil {
			return nil, fmt.Errorf("decode plan: %w", err)
		}
	}
	plan.RecomputeAll(doc)
	return doc, nil
}

func loadPlan(ctx context.Context) (*models.PlanDocument, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}
	return readPlan(ctx, cfg, store)
}

// scenarioFor resolves --scenario against the plan
func scenarioFor(doc *models.PlanDocument) (models.ScenarioName, error) {
	if flagScenario == "" {
		return doc.BaseScenario, nil
	}
	name, ok := models.ParseScenario(flagScenario)
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownScenario, flagScenario)
	}
	return name, nil
}
