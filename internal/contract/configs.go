package contract

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/debtlens/schema"
)

// Default values for configuration.
const (
	DefaultCommits     = 20
	MaxCommits         = 30
	DefaultMaxFiles    = 40
	MaxFiles           = 40
	DefaultMaxFileSize = 200_000
	DefaultPrecision   = 2
	DefaultCacheSize   = 128
	DefaultCharBudget  = 12_000
	DefaultGitHubAPI   = "https://api.github.com"
	DefaultAddr        = ":8080"
	DefaultLLMModel    = "gemini-2.5-flash"
	DefaultTimeout     = 2 * time.Minute
	DefaultCacheTTL    = 24 * time.Hour
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.NumCPU()

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultExtensions is the allow-list of code file extensions.
var DefaultExtensions = []string{
	".go", ".js", ".jsx", ".mjs", ".ts", ".tsx", ".py", ".java", ".kt", ".scala",
	".rb", ".rs", ".c", ".h", ".cc", ".cpp", ".hpp", ".cs", ".php", ".swift", ".sh",
}

// DefaultExcludes are directories and files never fetched for analysis.
var DefaultExcludes = []string{
	".git/", "node_modules/", "vendor/", "dist/", "build/", "out/", "target/", "bin/",
	"__pycache__/", ".venv/", "venv/", "coverage/", ".next/",
	".min.js", ".min.css", ".pb.go", "_generated.go",
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	Source      schema.SourceKind
	GitHubToken string // Please use env var as this is plaintext
	GitHubAPI   string

	Workers     int
	Commits     int
	MaxFiles    int
	MaxFileSize int64
	Timeout     time.Duration
	Extensions  []string
	Excludes    []string

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	Verbose    bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration
	CacheSize      int

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext
	Actor          string

	Addr string

	LLMModel      string
	LLMAPIKey     string // Please use env var as this is plaintext
	LLMCharBudget int
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Source ---
	Source      string `mapstructure:"source"`
	GitHubToken string `mapstructure:"github-token"`
	GitHubAPI   string `mapstructure:"github-api"`

	// --- Analysis bounds ---
	Workers     int    `mapstructure:"workers"`
	Commits     int    `mapstructure:"commits"`
	MaxFiles    int    `mapstructure:"max-files"`
	MaxFileSize int64  `mapstructure:"max-file-size"`
	Timeout     string `mapstructure:"timeout"`
	Exclude     string `mapstructure:"exclude"`

	// --- Output ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	Verbose    bool   `mapstructure:"verbose"`

	// --- Result cache ---
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	CacheTTL       string `mapstructure:"cache-ttl"`
	CacheSize      int    `mapstructure:"cache-size"`

	// --- Rollup store ---
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Actor          string `mapstructure:"actor"`

	// --- Server ---
	Addr string `mapstructure:"addr"`

	// --- Secondary opinion ---
	LLMModel      string `mapstructure:"llm-model"`
	LLMAPIKey     string `mapstructure:"llm-api-key"`
	LLMCharBudget int    `mapstructure:"llm-char-budget"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = append([]string(nil), c.Excludes...)
	}
	if c.Extensions != nil {
		clone.Extensions = append([]string(nil), c.Extensions...)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. Every failure wraps ErrInvalidInput.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := processBounds(cfg, input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	processSecrets(cfg, input)
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and source fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose
	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Source = schema.SourceKind(strings.ToLower(input.Source))
	if cfg.Source == "" {
		cfg.Source = schema.AutoSource
	}
	if _, ok := schema.ValidSourceKinds[cfg.Source]; !ok {
		return fmt.Errorf("invalid source '%s'. must be auto, local, github", input.Source)
	}

	cfg.GitHubAPI = strings.TrimSuffix(input.GitHubAPI, "/")
	if cfg.GitHubAPI == "" {
		cfg.GitHubAPI = DefaultGitHubAPI
	}

	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return nil
}

// processBounds validates worker counts, caps and durations.
func processBounds(cfg *Config, input *ConfigRawInput) error {
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Commits <= 0 {
		return fmt.Errorf("commits must be greater than 0 (received %d)", input.Commits)
	}
	cfg.Commits = min(input.Commits, MaxCommits)

	if input.MaxFiles <= 0 {
		return fmt.Errorf("max-files must be greater than 0 (received %d)", input.MaxFiles)
	}
	cfg.MaxFiles = min(input.MaxFiles, MaxFiles)

	if input.MaxFileSize <= 0 {
		return fmt.Errorf("max-file-size must be greater than 0 (received %d)", input.MaxFileSize)
	}
	cfg.MaxFileSize = input.MaxFileSize

	timeout, err := parsePositiveDuration("timeout", input.Timeout, DefaultTimeout)
	if err != nil {
		return err
	}
	cfg.Timeout = timeout

	ttl, err := parsePositiveDuration("cache-ttl", input.CacheTTL, DefaultCacheTTL)
	if err != nil {
		return err
	}
	cfg.CacheTTL = ttl

	if input.CacheSize <= 0 {
		return fmt.Errorf("cache-size must be greater than 0 (received %d)", input.CacheSize)
	}
	cfg.CacheSize = input.CacheSize

	cfg.LLMCharBudget = input.LLMCharBudget
	if cfg.LLMCharBudget <= 0 {
		cfg.LLMCharBudget = DefaultCharBudget
	}

	cfg.Extensions = append([]string(nil), DefaultExtensions...)
	cfg.Excludes = append([]string(nil), DefaultExcludes...)
	for p := range strings.SplitSeq(input.Exclude, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cfg.Excludes = append(cfg.Excludes, trimmed)
		}
	}
	return nil
}

func parsePositiveDuration(name, raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %v", name, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive (received %s)", name, raw)
	}
	return d, nil
}

// validateBackendConfigs validates cache and rollup store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Rollup Store Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("store-db-connect: %w", err)
	}

	cfg.Actor = strings.TrimSpace(input.Actor)
	if cfg.Actor == "" {
		cfg.Actor = os.Getenv("USER")
	}
	if cfg.StoreBackend != schema.NoneBackend && cfg.Actor == "" {
		return fmt.Errorf("actor is required when a rollup store is configured")
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.StoreBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		storePath := cfg.StoreDBConnect
		if storePath == "" {
			storePath = GetStoreDBFilePath()
		}
		if cachePath == storePath {
			return fmt.Errorf("cache and rollup storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// processSecrets fills tokens from their conventional environment variables
// when no flag or config value was given.
func processSecrets(cfg *Config, input *ConfigRawInput) {
	cfg.GitHubToken = input.GitHubToken
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	cfg.LLMAPIKey = input.LLMAPIKey
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	cfg.LLMModel = input.LLMModel
	if cfg.LLMModel == "" {
		cfg.LLMModel = DefaultLLMModel
	}
}
