package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:4242"

// Config holds the complete application configuration, loadable from
// environment variables (DG_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:4242" usage:"API server listen address"`
	SiteURL      string `default:"https://deadgravel.com" usage:"Canonical site URL used in social metadata" flag:"site-url" env:"SITE_URL"`
	StaticDir    string `default:"" usage:"Built client directory; enables serving the site shell" flag:"static-dir" env:"STATIC_DIR"`
	ImageBaseURL string `default:"" usage:"Base URL for merch images (e.g. https://cdn.example.com)" flag:"image-base-url" env:"IMAGE_BASE_URL"`
	MaxBodySize  int64  `default:"2097152" usage:"Maximum create-order body size in bytes" flag:"max-body-size" env:"MAX_BODY_SIZE"`
	Gelato       GelatoConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// GelatoConfig configures the print partner client.
type GelatoConfig struct {
	BaseURL string        `default:"https://order.gelatoapis.com" usage:"Gelato API base URL" env:"BASE_URL"`
	APIKey  string        `usage:"Gelato API key (DG_GELATO_API_KEY or GELATO_API_KEY)" env:"API_KEY"`
	Timeout time.Duration `default:"30s" usage:"Timeout of a single Gelato call" env:"TIMEOUT"`
	Channel string        `default:"localhost-dev" usage:"Channel metadata tag sent with every order" env:"CHANNEL"`
}

// RateLimitConfig controls the per-client limit on order creation.
type RateLimitConfig struct {
	Max    int           `default:"10" usage:"Max create-order requests per window; 0 disables"`
	Window time.Duration `default:"1m" usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `usage:"Allowed CORS origins; empty reflects any origin"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, flags and YAML
// config files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		Files: []string{"config.yaml", "/etc/deadgravel/config.yaml"},
	})
}

func loadConfig(base aconfig.Config) (*Config, error) {
	var cfg Config
	base.EnvPrefix = "DG"
	base.FileDecoders = map[string]aconfig.FileDecoder{
		".yaml": aconfigyaml.New(),
	}
	if err := aconfig.LoaderFor(&cfg, base).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.Gelato.Timeout <= 0 {
		return nil, errors.Errorf("gelato timeout must be positive, got %s", cfg.Gelato.Timeout)
	}
	if cfg.MaxBodySize <= 0 {
		return nil, errors.Errorf("max body size must be positive, got %d", cfg.MaxBodySize)
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the unprefixed PORT and GELATO_API_KEY
// variables used by hosting platforms and the legacy server onto the
// DG_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Gelato.APIKey == "" {
		c.Gelato.APIKey = os.Getenv("GELATO_API_KEY")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
