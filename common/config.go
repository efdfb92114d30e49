package common

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings for the service.
// Values come from the process environment, optionally seeded from a .env file.
type Config struct {
	Port       string
	DBPath     string
	UploadsDir string
	ExportsDir string
	BatchSize  int
	ImportYear int
	AuthSecret string
}

const (
	// DefaultBatchSize is the number of leads submitted per insert group
	// when the request does not override it
	DefaultBatchSize = 50

	// DefaultImportYear is the calendar year assumed for the legacy
	// dataset, whose contact dates carry only day and month
	DefaultImportYear = 2024
)

// LoadConfig reads configuration from the environment.
// A missing .env file is not an error.
func LoadConfig() Config {
	godotenv.Load()

	cfg := Config{
		Port:       getEnv("PORT", "8080"),
		DBPath:     getEnv("DB_PATH", "crm.db"),
		UploadsDir: getEnv("UPLOADS_DIR", "uploads"),
		ExportsDir: getEnv("EXPORTS_DIR", "exports"),
		BatchSize:  getEnvInt("BATCH_SIZE", DefaultBatchSize),
		ImportYear: getEnvInt("IMPORT_YEAR", DefaultImportYear),
		AuthSecret: os.Getenv("AUTH_SECRET"),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
