package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort              = "8080"
	DefaultAppBaseURL        = "http://localhost:8080/"
	DefaultAllowedOrigins    = "http://localhost:3000,http://localhost:8000"
	DefaultShellCacheVersion = "sidetrack-shell-v1"
)

type Config struct {
	Port              string
	Location          *time.Location
	SecretKey         string
	DBPath            string
	DatabaseURL       string
	AppBaseURL        string
	AllowedOrigins    []string
	CookieSecure      bool
	ShellOrigin       string
	ShellCacheVersion string
	SESSender         string
	AWSRegion         string
}

// Load seeds the environment from the given dotenv files (missing files are
// ignored) and reads the configuration from it. Variables already present in
// the environment win over file values.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, path := range dotenvFiles {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, err
		}
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	return Config{
		Port:              getEnv("PORT", DefaultPort),
		Location:          loadLocation(getEnv("TZ", "UTC")),
		SecretKey:         os.Getenv("SECRET_KEY"),
		DBPath:            getEnv("DB_PATH", filepath.Join("data", "sidetrack.db")),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AppBaseURL:        getEnv("APP_BASE_URL", DefaultAppBaseURL),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", DefaultAllowedOrigins)),
		CookieSecure:      getBool("COOKIE_SECURE", false),
		ShellOrigin:       strings.TrimSpace(os.Getenv("SHELL_ORIGIN")),
		ShellCacheVersion: getEnv("SHELL_CACHE_VERSION", DefaultShellCacheVersion),
		SESSender:         strings.TrimSpace(os.Getenv("SES_SENDER")),
		AWSRegion:         strings.TrimSpace(os.Getenv("AWS_REGION")),
	}
}

// MailEnabled reports whether login codes should be delivered by email.
func (cfg Config) MailEnabled() bool {
	return cfg.SESSender != "" && cfg.AWSRegion != ""
}

func (cfg Config) ShellEnabled() bool {
	return cfg.ShellOrigin != ""
}

func loadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s %q, using %t", key, raw, fallback)
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
