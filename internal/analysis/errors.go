package analysis

import (
	"context"
	"errors"
	"net"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNoContent    = errors.New("no analyzable content")
	ErrEmptyRequest = errors.New("documentText and userRole are required")
)

// ErrorKind classifies a raw failure signal from the generation service.
// Kinds are derived from recognized status/message patterns only; anything
// unmatched is KindUnknown.
type ErrorKind string

const (
	KindUnauthenticated    ErrorKind = "unauthenticated"
	KindQuotaExceeded      ErrorKind = "quota_exceeded"
	KindTimeout            ErrorKind = "timeout"
	KindNetworkUnavailable ErrorKind = "network_unavailable"
	KindModelUnavailable   ErrorKind = "model_unavailable"
	KindMalformedOutput    ErrorKind = "malformed_output"
	KindUnknown            ErrorKind = "unknown"
)

// Retryable reports whether another attempt could plausibly succeed.
// Auth, quota and model-capacity failures fail fast.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindNetworkUnavailable, KindTimeout, KindUnknown:
		return true
	default:
		return false
	}
}

// ClassifyError maps a raw provider error onto an ErrorKind by inspecting
// error types and lowercased message tokens.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetworkUnavailable
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "status 401", "status 403", "unauthenticated", "unauthorized", "invalid api key", "api key not valid", "permission denied"):
		return KindUnauthenticated
	case containsAny(msg, "status 429", "quota", "rate limit", "resource exhausted", "resource_exhausted", "too many requests"):
		return KindQuotaExceeded
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return KindTimeout
	case containsAny(msg, "connection refused", "connection reset", "broken pipe", "no such host", "network is unreachable", "tls handshake", "eof"):
		return KindNetworkUnavailable
	case containsAny(msg, "status 500", "status 502", "status 503", "status 504", "model is overloaded", "service unavailable", "internal server error", "model_not_found", "model not found"):
		return KindModelUnavailable
	case containsAny(msg, "invalid json", "unmarshal", "unexpected end of json", "schema", "missing field", "empty output"):
		return KindMalformedOutput
	default:
		return KindUnknown
	}
}

func containsAny(msg string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}

// UserMessage maps an ErrorKind to the single friendly message surfaced when
// a critical task fails.
func (k ErrorKind) UserMessage() string {
	switch k {
	case KindUnauthenticated:
		return "The analysis service is not configured correctly. Please contact support."
	case KindQuotaExceeded:
		return "The analysis service is busy right now. Please try again later."
	case KindTimeout:
		return "The analysis took too long to complete. Please try again."
	case KindNetworkUnavailable:
		return "We could not reach the analysis service. Please check your connection and try again."
	case KindModelUnavailable:
		return "The analysis service is temporarily unavailable. Please try again later."
	case KindMalformedOutput:
		return "We could not read the analysis results. Please try again."
	default:
		return "Something went wrong while analyzing the document. Please try again."
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	return truncate(msg, 500)
}
