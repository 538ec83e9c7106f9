package advisor

import "strings"

// failureKind buckets AI call errors into the categories players see.
type failureKind string

const (
	failureConfiguration failureKind = "configuration"
	failureConnectivity  failureKind = "connectivity"
	failureRateLimit     failureKind = "rate_limit"
	failureUnavailable   failureKind = "unavailable"
)

// classifyFailure inspects the error text the way provider errors actually
// surface: auth problems mention keys or 401, throttling mentions 429 or
// quota, transport problems mention dial or connection.
func classifyFailure(err error) failureKind {
	if err == nil {
		return failureUnavailable
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "401") ||
		strings.Contains(msg, "permission"):
		return failureConfiguration
	case strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "too many requests"):
		return failureRateLimit
	case strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") ||
		strings.Contains(msg, "tls") ||
		strings.Contains(msg, "network"):
		return failureConnectivity
	default:
		return failureUnavailable
	}
}

// message is the short player-facing text for the kind.
func (k failureKind) message() string {
	switch k {
	case failureConfiguration:
		return "The AI assistant is not set up on this server yet. Rule-based recommendations still work, so try a direct question like \"what gear should I upgrade\"."
	case failureConnectivity:
		return "The AI assistant could not be reached. Check back in a moment; rule-based recommendations still work."
	case failureRateLimit:
		return "The AI assistant is answering too many questions right now. Wait a little and ask again."
	default:
		return "The AI assistant is temporarily unavailable. Rule-based recommendations still work."
	}
}
