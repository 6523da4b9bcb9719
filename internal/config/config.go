package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const prodString = "prod"

// DefaultSubjects is used when SUBJECTS is not configured. The live
// deployment currently runs with exactly these two subjects.
var DefaultSubjects = []string{"Web Development", "Compiler Design"}

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration

	// PBLSchedulerSecret authenticates the external PBL poller. Empty means
	// the integration is unconfigured and the summary endpoint answers 503.
	PBLSchedulerSecret string

	// Subjects is the enumerated set of bookable subjects.
	Subjects []string

	// CancellationWindow is how long before slot start a student may still
	// cancel. Faculty cancellations are not bound by it.
	CancellationWindow time.Duration

	// RebookCooldown blocks rebooking a subject for this long after the
	// student cancels a booking for it. Zero disables the cooldown.
	RebookCooldown time.Duration

	MetricsEnabled bool
	ServiceName    string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == prodString

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for validating tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	ttl, err := getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.JWTAccessTokenTTL = ttl

	// Shared secret for the PBL availability poller. Optional on purpose:
	// the endpoint reports 503 until it is set.
	cfg.PBLSchedulerSecret = getEnv("PBL_SCHEDULER_SECRET", "")

	cfg.Subjects = parseSubjects(getEnv("SUBJECTS", ""))

	cfg.CancellationWindow, err = getEnvAsDuration("CANCELLATION_WINDOW", 4*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid CANCELLATION_WINDOW: %w", err)
	}

	cfg.RebookCooldown, err = getEnvAsDuration("REBOOK_COOLDOWN", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REBOOK_COOLDOWN: %w", err)
	}

	cfg.MetricsEnabled, err = getEnvAsBool("METRICS_ENABLED", false)
	if err != nil {
		return nil, fmt.Errorf("invalid METRICS_ENABLED: %w", err)
	}

	cfg.ServiceName = getEnv("SERVICE_NAME", "pbl-scheduler")

	return cfg, nil
}

// parseSubjects splits a comma-separated subject list, falling back to the
// built-in defaults when the variable is unset or blank.
func parseSubjects(raw string) []string {
	var subjects []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			subjects = append(subjects, s)
		}
	}
	if len(subjects) == 0 {
		return append([]string(nil), DefaultSubjects...)
	}
	return subjects
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a time.Duration.
// It returns the default value if the variable is not set.
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsBool retrieves an environment variable as a boolean.
// It returns the default value if the variable is not set.
func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid boolean: %w", key, valStr, err)
	}

	return val, nil
}
