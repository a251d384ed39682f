package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/mcpspace"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/pkg/logging"
)

// Duration wraps time.Duration so YAML values can be written in the usual
// Go form ("30s", "5m", "1h").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the immutable server configuration. It is loaded once at
// startup and passed by value into the components that need it.
type Config struct {
	Host      string      `yaml:"host,omitempty"`      // Host to bind to (default: localhost)
	Port      int         `yaml:"port,omitempty"`      // Port for the HTTP server (default: 8080)
	PublicURL string      `yaml:"publicURL,omitempty"` // Externally visible base URL (default: http://host:port)
	API       APIConfig   `yaml:"api,omitempty"`
	OAuth     OAuthConfig `yaml:"oauth,omitempty"`
}

// APIConfig configures the upstream MyMCPSpace API.
type APIConfig struct {
	BaseURL string   `yaml:"baseURL,omitempty"` // API base address (default: production)
	Timeout Duration `yaml:"timeout,omitempty"` // Per-call timeout (default: 30s)
}

// OAuthConfig configures the authorization engine.
type OAuthConfig struct {
	CodeTTL  Duration       `yaml:"codeTTL,omitempty"`  // Authorization code lifetime (default: 5m)
	TokenTTL Duration       `yaml:"tokenTTL,omitempty"` // Access token lifetime (default: 1h)
	Clients  []StaticClient `yaml:"clients,omitempty"`  // Statically registered clients
}

// StaticClient is a client registered from configuration rather than via
// dynamic registration. Static clients are always public; confidential
// clients must register dynamically so their secret is generated.
type StaticClient struct {
	ClientID     string   `yaml:"clientID"`
	Name         string   `yaml:"name,omitempty"`
	RedirectURIs []string `yaml:"redirectURIs"`
}

// GetDefaultConfig returns the configuration used when no file is present.
func GetDefaultConfig() Config {
	return Config{
		Host: "localhost",
		Port: 8080,
		API: APIConfig{
			BaseURL: mcpspace.DefaultBaseURL,
			Timeout: Duration(mcpspace.DefaultHTTPTimeout),
		},
		OAuth: OAuthConfig{
			CodeTTL:  Duration(5 * time.Minute),
			TokenTTL: Duration(time.Hour),
		},
	}
}

// Load reads configuration from the given YAML file, layered over the
// defaults. A missing file is not an error; the defaults are used.
func Load(path string) (Config, error) {
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("Config", "No config file found at %s, using defaults", path)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config from %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config from %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	logging.Info("Config", "Loaded configuration from %s", path)
	return cfg, nil
}

// Validate checks the configuration for values the server cannot start
// with.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.baseURL must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.OAuth.CodeTTL <= 0 || c.OAuth.TokenTTL <= 0 {
		return fmt.Errorf("oauth TTLs must be positive")
	}
	for _, client := range c.OAuth.Clients {
		if client.ClientID == "" {
			return fmt.Errorf("static client missing clientID")
		}
		if len(client.RedirectURIs) == 0 {
			return fmt.Errorf("static client %s has no redirectURIs", client.ClientID)
		}
	}
	return nil
}

// Issuer returns the externally visible base URL, falling back to the bind
// address when no public URL is configured.
func (c Config) Issuer() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// ListenAddr returns the address the HTTP server binds to.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
