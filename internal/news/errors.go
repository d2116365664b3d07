package news

import "fmt"

// ConfigError reports a missing or placeholder API key, detected at client
// construction before any network call.
type ConfigError struct {
	Name   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Name, e.Reason)
}

// AuthError means the provider rejected the API key (HTTP 401).
type AuthError struct{}

func (e *AuthError) Error() string {
	return "news provider rejected the API key"
}

// RateLimitError means the provider throttled the request (HTTP 429).
type RateLimitError struct{}

func (e *RateLimitError) Error() string {
	return "news provider rate limit exceeded"
}

// TransportError wraps a timeout or network-level failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("news provider unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError covers any other non-200 response.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("news provider returned status %d: %s", e.Status, e.Body)
}
