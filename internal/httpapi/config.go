package httpapi

import "time"

// Options configures the status server.
type Options struct {
	// CORSOrigins enables CORS for the listed origins. Empty disables it.
	CORSOrigins []string
	// ShutdownTimeout bounds graceful shutdown; zero means 5s.
	ShutdownTimeout time.Duration
}

const defaultShutdownTimeout = 5 * time.Second

var (
	corsAllowedMethods = []string{"GET", "OPTIONS"}
	corsAllowedHeaders = []string{"Accept", "Content-Type", "X-Request-ID"}
)
