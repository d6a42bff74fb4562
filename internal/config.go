package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/memocurve/internal/enrich"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Deck storage backends.
const (
	DeckBackendFile   = "file"
	DeckBackendSQLite = "sqlite"
)

// Enrichment providers.
const (
	EnrichProviderNone   = "none"
	EnrichProviderGemini = "gemini"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Deck   DeckConfig        `yaml:"deck"`
	Enrich EnrichConfig      `yaml:"enrich"`
	Notify NotifyConfig      `yaml:"notify"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Deck.Validate(); err != nil {
		return err
	}
	if err := c.Enrich.Validate(); err != nil {
		return err
	}
	if err := c.Notify.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DeckConfig holds where and how the card deck is persisted.
//
// Backend selects the storage provider:
//   - "file" (default): JSON blobs in a directory; edits made by other
//     tools are picked up by the watcher when Watch is true.
//   - "sqlite": a single SQLite database file.
type DeckConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Watch   bool   `yaml:"watch"`
}

// Validate validates the deck configuration.
func (c *DeckConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = DeckBackendFile
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(DeckBackendFile, DeckBackendSQLite)),
		validation.Field(&c.Path, validation.Required),
	); err != nil {
		return err
	}
	if c.Watch && c.Backend != DeckBackendFile {
		return fmt.Errorf("deck: watch requires the %q backend", DeckBackendFile)
	}
	return nil
}

// EnrichConfig holds AI question generation configuration.
//
// Provider "none" uses a canned question template; "gemini" calls the
// Gemini API and needs APIKey. An empty Model falls back to the default.
type EnrichConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// Validate validates the enrichment configuration.
func (c *EnrichConfig) Validate() error {
	if c.Provider == "" {
		c.Provider = EnrichProviderNone
	}
	if c.Model == "" {
		c.Model = enrich.DefaultModel
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(EnrichProviderNone, EnrichProviderGemini)),
	); err != nil {
		return err
	}
	if c.Provider == EnrichProviderGemini && c.APIKey == "" {
		return fmt.Errorf("enrich: provider is %q but api_key is empty", EnrichProviderGemini)
	}
	return nil
}

// NotifyConfig holds due-card reminder polling configuration.
type NotifyConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// Validate validates the notify configuration.
func (c *NotifyConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.IntervalSeconds, validation.Required, validation.Min(5), validation.Max(3600)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Deck: DeckConfig{
			Backend: DeckBackendFile,
			Path:    "./deck",
			Watch:   true,
		},
		Enrich: EnrichConfig{
			Provider: EnrichProviderNone,
			Model:    enrich.DefaultModel,
		},
		Notify: NotifyConfig{
			IntervalSeconds: 60,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
