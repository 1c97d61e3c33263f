package directus

import (
	"time"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents the configuration of a client for one list endpoint.
//
// # Endpoint
//
// Endpoint is the full URL of a list endpoint, e.g.
// "https://cms.example.com/items/webstack" or "https://cms.example.com/files".
// It must be an absolute http or https URL; the client refuses to start
// otherwise, before any request is made.
//
// # Authentication
//
// When AccessToken is set it is sent as a static Bearer token on every
// request. Directus static tokens do not expire, so no refresh is attempted.
//
// # Timeouts and retries
//
// Per-request timeouts should generally be controlled via the context passed
// to client methods; HTTPTimeout bounds a single attempt. RetryMax enables
// bounded retries of transient failures (>=500, 429 and connection errors).
// Retries repeat the same page request, so page order is unaffected.
type Config struct {
	// Endpoint: absolute URL of the list endpoint.
	Endpoint string
	// AccessToken: optional static token sent as "Authorization: Bearer <token>".
	AccessToken string

	// HTTPTimeout: timeout of a single HTTP attempt. Zero uses the default.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures. Zero disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and pagination.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
}
