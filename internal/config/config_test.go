package config

import (
	"strings"
	"testing"
	"time"

	"bizplan/internal/services/access"
	"bizplan/internal/services/planstore"
)

func TestLoadFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLANNER_DATA_DIR", dir)
	t.Setenv("PLANNER_LISTEN_ADDR", ":9090")
	t.Setenv("PLANNER_DEBUG", "1")
	t.Setenv("PLANNER_STORE", "sqlite")
	t.Setenv("PLANNER_AI_RETRY_BASE", "250ms")
	t.Setenv("PLANNER_ACCESS_STATE", "Expired")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" || !cfg.Debug {
		t.Errorf("server settings = %s, %v", cfg.ListenAddr, cfg.Debug)
	}
	if cfg.Store != planstore.KindSQLite || !strings.HasPrefix(cfg.SQLitePath, dir) {
		t.Errorf("store = %s at %s", cfg.Store, cfg.SQLitePath)
	}
	if cfg.AIRetryBase != 250*time.Millisecond {
		t.Errorf("retry base = %v", cfg.AIRetryBase)
	}
	if cfg.AccessState != access.Expired {
		t.Errorf("access state = %s", cfg.AccessState)
	}
	if opts := cfg.StoreOptions(); opts.Kind != planstore.KindSQLite || opts.DocumentID != planstore.DefaultDocumentID {
		t.Errorf("store options = %+v", opts)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown store", func(c *Config) { c.Store = "mongo" }, "PLANNER_STORE"},
		{"postgres without url", func(c *Config) { c.Store = planstore.KindPostgres }, "PLANNER_POSTGRES_URL"},
		{"firestore without project", func(c *Config) { c.Store = planstore.KindFirestore }, "PLANNER_FIRESTORE_PROJECT"},
		{"bad retry", func(c *Config) { c.AIRetryMax = time.Millisecond }, "retry"},
		{"bad access state", func(c *Config) { c.AccessState = "trial" }, "PLANNER_ACCESS_STATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
