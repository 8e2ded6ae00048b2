package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Backend API
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Counselor directory cache (optional, enabled when RedisAddr is set)
	RedisAddr         string
	RedisPassword     string
	RedisTLS          bool
	DirectoryCacheTTL time.Duration

	// MetricsAddr exposes Prometheus metrics from the shell when non-empty (e.g. ":9100").
	MetricsAddr string

	// Fake backend (local development and tests)
	FakeBackendPort   string
	FakeBackendSecret string
	FakeBackendSeed   bool
	// The first admin is created at startup when the email is set.
	FakeBackendAdminEmail    string
	FakeBackendAdminPassword string
	FakeBackendAdminName     string
	// Comma-separated browser origins allowed to call the fake backend.
	FakeBackendCORSOrigins []string
	// Login attempts per minute per client; 0 disables the limit.
	FakeBackendLoginPerMinute int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real environment values win.
func Load() *Config {
	_ = godotenv.Load()
	return fromEnv()
}

// LoadFile is like Load but reads the named dotenv files instead of ./.env.
func LoadFile(filenames ...string) (*Config, error) {
	if err := godotenv.Load(filenames...); err != nil {
		return nil, err
	}
	return fromEnv(), nil
}

func fromEnv() *Config {
	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIBaseURL:  strings.TrimRight(getEnv("MINDCARE_API_BASE", "http://localhost:8080/api"), "/"),
		HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", 15*time.Second),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvAsBool("REDIS_TLS", false),
		DirectoryCacheTTL: getEnvAsDuration("DIRECTORY_CACHE_TTL", 5*time.Minute),

		MetricsAddr: getEnv("METRICS_ADDR", ""),

		FakeBackendPort:   getEnv("FAKE_BACKEND_PORT", "8080"),
		FakeBackendSecret: getEnv("FAKE_BACKEND_SECRET", "dev-only-secret"),
		FakeBackendSeed:   getEnvAsBool("FAKE_BACKEND_SEED", true),

		FakeBackendAdminEmail:     getEnv("FAKE_BACKEND_ADMIN_EMAIL", "admin@mindcare.test"),
		FakeBackendAdminPassword:  getEnv("FAKE_BACKEND_ADMIN_PASSWORD", "admin123"),
		FakeBackendAdminName:      getEnv("FAKE_BACKEND_ADMIN_NAME", "Admin"),
		FakeBackendCORSOrigins:    getEnvAsList("FAKE_BACKEND_CORS_ORIGINS"),
		FakeBackendLoginPerMinute: getEnvAsInt("FAKE_BACKEND_LOGIN_PER_MINUTE", 10),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blank items.
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
