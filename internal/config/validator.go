package config

import (
	"fmt"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate reports every invalid setting; an empty result means the config is usable.
func (c *AppConfig) Validate() []ValidationError {
	var errs []ValidationError

	switch c.LLM.Provider {
	case "googleai", "openai", "ollama":
	default:
		errs = append(errs, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider %q (want googleai, openai or ollama)", c.LLM.Provider),
		})
	}

	if c.LLM.Model == "" {
		errs = append(errs, ValidationError{Field: "llm.model", Message: "model is required"})
	}

	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		errs = append(errs, ValidationError{Field: "llm.api_key", Message: "api key is required for hosted providers"})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.LLM.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "llm.requests_per_second", Message: "must not be negative"})
	}

	if c.Pipeline.MaxUploadBytes <= 0 {
		errs = append(errs, ValidationError{Field: "pipeline.max_upload_bytes", Message: "must be positive"})
	}

	if c.Pipeline.MaxAttempts < 1 {
		errs = append(errs, ValidationError{Field: "pipeline.max_attempts", Message: "must be at least 1"})
	}

	if c.Pipeline.BaseDelay < 0 || c.Pipeline.MaxJitter < 0 {
		errs = append(errs, ValidationError{Field: "pipeline.base_delay", Message: "delays must not be negative"})
	}

	if c.Pipeline.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "pipeline.timeout", Message: "must not be negative"})
	}

	if c.Pipeline.PresignExpiry < time.Second || c.Pipeline.PresignExpiry > 7*24*time.Hour {
		errs = append(errs, ValidationError{Field: "pipeline.presign_expiry", Message: "must be between 1s and 7 days"})
	}

	if c.MinIO.Enabled() && c.MinIO.Bucket == "" {
		errs = append(errs, ValidationError{Field: "minio.bucket", Message: "bucket is required when an endpoint is set"})
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, ValidationError{Field: "timezone", Message: err.Error()})
	}

	return errs
}
