package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bizplan/internal/services/access"
	"bizplan/internal/services/planstore"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `json:"listen_addr"`
	Debug      bool   `json:"debug"`
	LogFormat  string `json:"log_format"`

	// Directories
	DataDirectory   string `json:"data_directory"`
	BackupDirectory string `json:"backup_directory"`
	// Password unlocks an encrypted data directory at startup
	Password string `json:"-"`

	// Plan store
	Store               string `json:"store"`
	DocumentID          string `json:"document_id"`
	SQLitePath          string `json:"sqlite_path"`
	PostgresURL         string `json:"-"`
	DynamoTable         string `json:"dynamo_table"`
	DynamoRegion        string `json:"dynamo_region"`
	DynamoEndpoint      string `json:"dynamo_endpoint"`
	AWSAccessKeyID      string `json:"-"`
	AWSSecretAccessKey  string `json:"-"`
	FirestoreProject    string `json:"firestore_project"`
	FirestoreCollection string `json:"firestore_collection"`

	// Change events
	AMQPURL      string `json:"-"`
	AMQPExchange string `json:"amqp_exchange"`

	// Narrative generation
	GeminiAPIKey     string        `json:"-"`
	GeminiModel      string        `json:"gemini_model"`
	PromptsFile      string        `json:"prompts_file"`
	AIMaxAttempts    int           `json:"ai_max_attempts"`
	AIRetryBase      time.Duration `json:"ai_retry_base"`
	AIRetryMax       time.Duration `json:"ai_retry_max"`
	AIRequestTimeout time.Duration `json:"ai_request_timeout"`

	// Subscription gate. AccessToken authorizes state changes.
	AccessState access.State `json:"access_state"`
	AccessToken string       `json:"-"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	dataDir := filepath.Join(wd, "data")

	return &Config{
		ListenAddr:          ":8080",
		LogFormat:           "text",
		DataDirectory:       dataDir,
		BackupDirectory:     filepath.Join(dataDir, "backups"),
		Store:               planstore.KindFile,
		DocumentID:          planstore.DefaultDocumentID,
		SQLitePath:          filepath.Join(dataDir, "bizplan.db"),
		DynamoTable:         "bizplan-plans",
		DynamoRegion:        "us-east-1",
		FirestoreCollection: "plans",
		AMQPExchange:        "bizplan.changes",
		AIMaxAttempts:       3,
		AIRetryBase:         time.Second,
		AIRetryMax:          8 * time.Second,
		AIRequestTimeout:    60 * time.Second,
		AccessState:         access.Active,
	}
}

// Load reads .env (when present) and PLANNER_* environment variables over
// the defaults, then creates the data directories
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ensureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	str("PLANNER_LISTEN_ADDR", &c.ListenAddr)
	if debug := os.Getenv("PLANNER_DEBUG"); debug == "true" || debug == "1" {
		c.Debug = true
	}
	str("PLANNER_LOG_FORMAT", &c.LogFormat)
	if dataDir := os.Getenv("PLANNER_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
		c.BackupDirectory = filepath.Join(dataDir, "backups")
		c.SQLitePath = filepath.Join(dataDir, "bizplan.db")
	}

	if v := os.Getenv("PLANNER_PASSWORD"); v != "" {
		c.Password = v
	}

	str("PLANNER_STORE", &c.Store)
	str("PLANNER_DOCUMENT_ID", &c.DocumentID)
	str("PLANNER_SQLITE_PATH", &c.SQLitePath)
	str("PLANNER_POSTGRES_URL", &c.PostgresURL)
	str("PLANNER_DYNAMO_TABLE", &c.DynamoTable)
	str("PLANNER_DYNAMO_REGION", &c.DynamoRegion)
	str("PLANNER_DYNAMO_ENDPOINT", &c.DynamoEndpoint)
	str("AWS_ACCESS_KEY_ID", &c.AWSAccessKeyID)
	str("AWS_SECRET_ACCESS_KEY", &c.AWSSecretAccessKey)
	str("PLANNER_FIRESTORE_PROJECT", &c.FirestoreProject)
	str("PLANNER_FIRESTORE_COLLECTION", &c.FirestoreCollection)

	str("PLANNER_AMQP_URL", &c.AMQPURL)
	str("PLANNER_AMQP_EXCHANGE", &c.AMQPExchange)

	str("GEMINI_API_KEY", &c.GeminiAPIKey)
	str("PLANNER_GEMINI_MODEL", &c.GeminiModel)
	str("PLANNER_PROMPTS_FILE", &c.PromptsFile)
	if v := os.Getenv("PLANNER_AI_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.AIMaxAttempts = n
		}
	}
	dur("PLANNER_AI_RETRY_BASE", &c.AIRetryBase)
	dur("PLANNER_AI_RETRY_MAX", &c.AIRetryMax)
	dur("PLANNER_AI_TIMEOUT", &c.AIRequestTimeout)

	if v := os.Getenv("PLANNER_ACCESS_STATE"); v != "" {
		c.AccessState = access.State(strings.ToLower(strings.TrimSpace(v)))
	}
	str("PLANNER_ACCESS_TOKEN", &c.AccessToken)
}

// Validate collects every configuration problem into one error
func (c *Config) Validate() error {
	var errs []error
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if c.DataDirectory == "" {
		errs = append(errs, errors.New("data directory is empty"))
	}
	if !slices.Contains(planstore.Kinds, c.Store) {
		errs = append(errs, fmt.Errorf("PLANNER_STORE %q is not one of %s", c.Store, strings.Join(planstore.Kinds, ", ")))
	}
	switch c.Store {
	case planstore.KindPostgres:
		if c.PostgresURL == "" {
			errs = append(errs, errors.New("PLANNER_POSTGRES_URL is required for the postgres store"))
		}
	case planstore.KindDynamoDB:
		if c.DynamoTable == "" || c.DynamoRegion == "" {
			errs = append(errs, errors.New("PLANNER_DYNAMO_TABLE and PLANNER_DYNAMO_REGION are required for the dynamodb store"))
		}
	case planstore.KindFirestore:
		if c.FirestoreProject == "" {
			errs = append(errs, errors.New("PLANNER_FIRESTORE_PROJECT is required for the firestore store"))
		}
	}
	if c.AIMaxAttempts < 1 {
		errs = append(errs, errors.New("PLANNER_AI_MAX_ATTEMPTS must be at least 1"))
	}
	if c.AIRetryBase <= 0 || c.AIRetryMax < c.AIRetryBase {
		errs = append(errs, errors.New("AI retry delays must be positive with max >= base"))
	}
	if !c.AccessState.Valid() {
		errs = append(errs, fmt.Errorf("PLANNER_ACCESS_STATE %q is invalid", c.AccessState))
	}
	return errors.Join(errs...)
}

// StoreOptions maps the store settings to plan store options
func (c *Config) StoreOptions() planstore.Options {
	return planstore.Options{
		Kind:        c.Store,
		DocumentID:  c.DocumentID,
		SQLitePath:  c.SQLitePath,
		PostgresURL: c.PostgresURL,
		DynamoDB: planstore.DynamoDBOptions{
			Table:           c.DynamoTable,
			Region:          c.DynamoRegion,
			Endpoint:        c.DynamoEndpoint,
			AccessKeyID:     c.AWSAccessKeyID,
			SecretAccessKey: c.AWSSecretAccessKey,
		},
		FirestoreProject:    c.FirestoreProject,
		FirestoreCollection: c.FirestoreCollection,
	}
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() error {
	for _, dir := range []string{c.DataDirectory, c.BackupDirectory} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
