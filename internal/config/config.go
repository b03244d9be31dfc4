package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds PostgreSQL settings for the extraction history.
// An empty Host disables history.
type DatabaseConfig struct {
	Host               string `yaml:"host"`
	Port               string `yaml:"port"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Name               string `yaml:"name"`
	SSLMode            string `yaml:"sslmode"`
	ApplicationName    string `yaml:"application_name"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool { return c.Host != "" }

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled reports whether an object store is configured.
func (c MinIOConfig) Enabled() bool { return c.Endpoint != "" }

// LLMConfig selects and tunes the generative model.
type LLMConfig struct {
	Provider          string  `yaml:"provider"` // googleai, openai or ollama
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	Temperature       float64 `yaml:"temperature"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 disables client-side throttling
	Burst             int     `yaml:"burst"`
}

// PipelineConfig bounds one contract extraction run.
type PipelineConfig struct {
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxAttempts    int           `yaml:"max_attempts"`
	BaseDelay      time.Duration `yaml:"base_delay"`
	MaxJitter      time.Duration `yaml:"max_jitter"`
	PresignExpiry  time.Duration `yaml:"presign_expiry"`
}

// TextExtractConfig configures the pdftotext binary.
type TextExtractConfig struct {
	PdftotextPath string        `yaml:"pdftotext_path"`
	Timeout       time.Duration `yaml:"timeout"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables, optionally overlaid by a YAML file.
type AppConfig struct {
	AppHost     string            `yaml:"app_host"`
	Port        string            `yaml:"port"`
	Timezone    string            `yaml:"timezone"`
	LogLevel    string            `yaml:"log_level"`
	Database    DatabaseConfig    `yaml:"database"`
	MinIO       MinIOConfig       `yaml:"minio"`
	LLM         LLMConfig         `yaml:"llm"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	TextExtract TextExtractConfig `yaml:"text_extract"`
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			ApplicationName:    getEnv("DB_APPLICATION_NAME", "contractapi"),
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
		LLM: LLMConfig{
			Provider:          getEnv("LLM_PROVIDER", "googleai"),
			Model:             getEnv("LLM_MODEL", "gemini-2.5-pro"),
			APIKey:            getEnv("LLM_API_KEY", ""),
			BaseURL:           getEnv("LLM_BASE_URL", ""),
			Temperature:       getEnvFloat("LLM_TEMPERATURE", 0.1),
			RequestsPerSecond: getEnvFloat("LLM_REQUESTS_PER_SECOND", 0),
			Burst:             getEnvInt("LLM_BURST", 1),
		},
		Pipeline: PipelineConfig{
			MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 25<<20)),
			Timeout:        getEnvDuration("PIPELINE_TIMEOUT", 10*time.Minute),
			MaxAttempts:    getEnvInt("MODEL_MAX_ATTEMPTS", 3),
			BaseDelay:      getEnvDuration("MODEL_RETRY_BASE_DELAY", 2*time.Second),
			MaxJitter:      getEnvDuration("MODEL_RETRY_MAX_JITTER", time.Second),
			PresignExpiry:  getEnvDuration("PRESIGN_EXPIRY", 24*time.Hour),
		},
		TextExtract: TextExtractConfig{
			PdftotextPath: getEnv("PDFTOTEXT_PATH", "pdftotext"),
			Timeout:       getEnvDuration("PDFTOTEXT_TIMEOUT", 60*time.Second),
		},
	}
}

// LoadFile overlays the YAML document at path onto cfg. Keys missing from the
// file keep their current values.
func LoadFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Location resolves the configured time zone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
