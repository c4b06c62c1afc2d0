package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Resolver service
	Resolver ResolverConfig

	// Workflow timing
	Workflow WorkflowConfig

	// Reference data
	RefDataPath string // YAML file with securities + market status (empty = built-in set)

	// Logging
	LogLevel  string
	LogFormat string
}

// ResolverConfig holds the remote instruction-resolver settings.
type ResolverConfig struct {
	BaseURL       string
	Timeout       time.Duration
	ProbeSchedule string // cron spec for the liveness probe
	RateLimit     float64
	RateBurst     int
	Enabled       bool // false forces local-only resolution
}

// WorkflowConfig holds the timing knobs for the order workflow.
// Fixed delays stand in for backend round-trips; tests shrink them.
type WorkflowConfig struct {
	DebounceWindow   time.Duration // quiet period before an instruction resolve
	MinResolveLength int           // shorter trimmed text clears instead of resolving
	StageDelay       time.Duration // validation -> submission -> market advance
	AlgoConfirmDelay time.Duration // algorithm confirmed -> execution
	SummaryDelay     time.Duration // execution -> summary generated
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8085"),
		Env:  getEnv("ENV", "development"),

		Resolver: ResolverConfig{
			BaseURL:       getEnv("RESOLVER_BASE_URL", "http://localhost:8000"),
			Timeout:       getEnvAsDuration("RESOLVER_TIMEOUT", "5s"),
			ProbeSchedule: getEnv("RESOLVER_PROBE_SCHEDULE", "@every 30s"),
			RateLimit:     getEnvAsFloat("RESOLVER_RATE_LIMIT", 5),
			RateBurst:     getEnvAsInt("RESOLVER_RATE_BURST", 10),
			Enabled:       getEnvAsBool("RESOLVER_ENABLED", true),
		},

		Workflow: WorkflowConfig{
			DebounceWindow:   getEnvAsDuration("WORKFLOW_DEBOUNCE_WINDOW", "500ms"),
			MinResolveLength: getEnvAsInt("WORKFLOW_MIN_RESOLVE_LENGTH", 2),
			StageDelay:       getEnvAsDuration("WORKFLOW_STAGE_DELAY", "1200ms"),
			AlgoConfirmDelay: getEnvAsDuration("WORKFLOW_ALGO_CONFIRM_DELAY", "1500ms"),
			SummaryDelay:     getEnvAsDuration("WORKFLOW_SUMMARY_DELAY", "2s"),
		},

		RefDataPath: getEnv("REFDATA_PATH", ""),

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Resolver.Enabled && c.Resolver.BaseURL == "" {
		return fmt.Errorf("RESOLVER_BASE_URL is required when the resolver is enabled")
	}

	if c.Workflow.MinResolveLength < 1 {
		return fmt.Errorf("WORKFLOW_MIN_RESOLVE_LENGTH must be >= 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
