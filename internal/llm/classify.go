package llm

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"contractapi/internal/model"
)

// Classify maps a model-call error onto the pipeline taxonomy. Structured
// gRPC status codes win; message matching is the fallback for providers that
// only return text.
func Classify(err error) model.ErrorKind {
	if err == nil {
		return ""
	}

	var pe *model.PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return model.KindTimeout
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable:
			return model.KindModelOverloaded
		case codes.ResourceExhausted:
			if strings.Contains(strings.ToLower(st.Message()), "quota") {
				return model.KindQuotaExceeded
			}
			return model.KindRateLimited
		case codes.DeadlineExceeded:
			return model.KindTimeout
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "overloaded"):
		return model.KindModelOverloaded
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"):
		return model.KindRateLimited
	case strings.Contains(msg, "quota exceeded"):
		return model.KindQuotaExceeded
	}
	return model.KindUnknownModel
}

// IsRetryable reports whether another attempt may succeed.
func IsRetryable(err error) bool {
	return Classify(err).Retryable()
}
