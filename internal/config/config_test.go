package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("LLM_TEMPERATURE", "0.3")
	t.Setenv("PIPELINE_TIMEOUT", "90s")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 90*time.Second, cfg.Pipeline.Timeout)
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"LLM_PROVIDER", "LLM_TEMPERATURE", "MAX_UPLOAD_BYTES", "PIPELINE_TIMEOUT", "MODEL_MAX_ATTEMPTS", "MODEL_RETRY_BASE_DELAY", "MODEL_RETRY_MAX_JITTER"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "googleai", cfg.LLM.Provider)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, int64(25<<20), cfg.Pipeline.MaxUploadBytes)
	assert.Equal(t, 10*time.Minute, cfg.Pipeline.Timeout)
	assert.Equal(t, 3, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.BaseDelay)
	assert.Equal(t, time.Second, cfg.Pipeline.MaxJitter)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
log_level: debug
llm:
  provider: ollama
  model: llama3
  base_url: "http://localhost:11434"
pipeline:
  timeout: 2m
  max_attempts: 5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg := Load()
	cfg.LLM.Temperature = 0.1
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, 2*time.Minute, cfg.Pipeline.Timeout)
	assert.Equal(t, 5, cfg.Pipeline.MaxAttempts)
	// untouched keys keep their env values
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-9)
}

func TestLoadFile_Errors(t *testing.T) {
	cfg := Load()
	assert.Error(t, LoadFile(cfg, filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o644))
	assert.Error(t, LoadFile(cfg, path))
}

func validConfig() *AppConfig {
	return &AppConfig{
		Timezone: "UTC",
		LLM:      LLMConfig{Provider: "googleai", Model: "gemini-2.5-pro", APIKey: "k", Temperature: 0.1},
		Pipeline: PipelineConfig{
			MaxUploadBytes: 25 << 20,
			Timeout:        10 * time.Minute,
			MaxAttempts:    3,
			BaseDelay:      2 * time.Second,
			MaxJitter:      time.Second,
			PresignExpiry:  24 * time.Hour,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *AppConfig)
		wantField string
	}{
		{name: "valid", mutate: func(c *AppConfig) {}},
		{name: "ollama needs no key", mutate: func(c *AppConfig) { c.LLM.Provider = "ollama"; c.LLM.APIKey = "" }},
		{name: "unknown provider", mutate: func(c *AppConfig) { c.LLM.Provider = "bard" }, wantField: "llm.provider"},
		{name: "missing key", mutate: func(c *AppConfig) { c.LLM.APIKey = "" }, wantField: "llm.api_key"},
		{name: "temperature too high", mutate: func(c *AppConfig) { c.LLM.Temperature = 2.5 }, wantField: "llm.temperature"},
		{name: "zero attempts", mutate: func(c *AppConfig) { c.Pipeline.MaxAttempts = 0 }, wantField: "pipeline.max_attempts"},
		{name: "zero upload ceiling", mutate: func(c *AppConfig) { c.Pipeline.MaxUploadBytes = 0 }, wantField: "pipeline.max_upload_bytes"},
		{name: "bucket missing", mutate: func(c *AppConfig) { c.MinIO.Endpoint = "localhost:9000" }, wantField: "minio.bucket"},
		{name: "bad timezone", mutate: func(c *AppConfig) { c.Timezone = "Mars/Olympus" }, wantField: "timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			errs := c.Validate()
			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	t.Setenv(key, "")
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	t.Setenv(key, "1500ms")
	assert.Equal(t, 1500*time.Millisecond, getEnvDuration(key, 0))

	t.Setenv(key, "soon")
	assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute))
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "Asia/Jakarta"}
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())

	cfg.Timezone = "nowhere"
	assert.Equal(t, time.UTC, cfg.Location())
}
