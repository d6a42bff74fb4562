package internal

import "github.com/starford/memocurve/internal/enrich"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	enricher enrich.Enricher
	mcp      bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithEnricher overrides the question generator built from the config.
// Used by tests to avoid real API calls.
func WithEnricher(e enrich.Enricher) Option {
	return func(a *application) {
		a.enricher = e
	}
}

// WithMCP switches the application to MCP stdio mode instead of the
// HTTP server.
func WithMCP(enabled bool) Option {
	return func(a *application) {
		a.mcp = enabled
	}
}
