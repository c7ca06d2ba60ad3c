package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the back-office API.
type Config struct {
	Environment string
	HTTPPort    int
	DataStore   string
	DatabaseURL string
	LogLevel    string

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	// AllowedAppOrigins are the web-app origins trusted to start a login.
	// Entries may be exact origins or host patterns with a single numeric
	// wildcard (tenant*.app.local).
	AllowedAppOrigins []string

	WhatsAppToken   string
	WhatsAppPhoneID string
}

// Load reads configuration from the environment (and a local .env file if
// present) with sensible defaults for local development.
func Load() (Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	databaseURL, err := getEnvOrFile("DATABASE_URL", "/run/secrets/vetdesk_database_url")
	if err != nil {
		return Config{}, err
	}

	googleClientSecret, err := getEnvOrFile("GOOGLE_CLIENT_SECRET", "/run/secrets/vetdesk_google_client_secret")
	if err != nil {
		return Config{}, err
	}

	whatsAppToken, err := getEnvOrFile("WHATSAPP_TOKEN", "/run/secrets/vetdesk_whatsapp_token")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:        getEnv("APP_ENV", "development"),
		DataStore:          strings.ToLower(getEnv("DATA_STORE", "memory")),
		DatabaseURL:        databaseURL,
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: strings.TrimSpace(googleClientSecret),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		AllowedAppOrigins:  parseCSV(getEnv("ALLOWED_APP_ORIGINS", "http://localhost:5173")),
		WhatsAppToken:      strings.TrimSpace(whatsAppToken),
		WhatsAppPhoneID:    strings.TrimSpace(os.Getenv("WHATSAPP_PHONE_ID")),
	}

	portValue := getEnv("PORT", getEnv("HTTP_PORT", "8080"))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	if cfg.DataStore == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATA_STORE is postgres but DATABASE_URL is not set")
	}

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return Config{}, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}

	if len(cfg.AllowedAppOrigins) == 0 {
		return Config{}, fmt.Errorf("ALLOWED_APP_ORIGINS must not be empty")
	}

	return cfg, nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// UseInMemoryStore returns true if the in-memory repositories should be used.
func (c Config) UseInMemoryStore() bool {
	return c.DataStore == "memory"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
