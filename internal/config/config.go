package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL connection settings for the project
// document collection.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the project file bucket.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// OpenAIConfig holds settings for the design-concept extraction collaborator.
// BaseURL allows pointing at any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// SearchConfig holds discovery engine knobs. ResultLimit caps the ranked
// result list returned to the caller.
type SearchConfig struct {
	ResultLimit int
}

// LinkerConfig holds the file-to-project linker knobs. IDPattern must be a
// regular expression whose first capture group is the project identifier;
// BatchSize must stay below the store's per-transaction operation ceiling.
type LinkerConfig struct {
	BatchSize int
	IDPattern string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Env      string
	LogLevel string
	Database DatabaseConfig
	MinIO    MinIOConfig
	OpenAI   OpenAIConfig
	Search   SearchConfig
	Linker   LinkerConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"), // default only for non-sensitive value
		Env:      getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", ""),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Search: SearchConfig{
			ResultLimit: getEnvInt("SEARCH_RESULT_LIMIT", 9),
		},
		Linker: LinkerConfig{
			BatchSize: getEnvInt("LINKER_BATCH_SIZE", 400),
			IDPattern: getEnv("LINKER_ID_PATTERN", `^([A-Z]-\d+)`),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
