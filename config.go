package goSession

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/internal/identity"
)

const (
	// MinTokenLength is the smallest accepted token entropy length in bytes.
	MinTokenLength = 10
	// MinSecretLength is the shortest accepted binding secret.
	MinSecretLength = identity.MinSecretLength
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session   SessionConfig   `envPrefix:"SESSION_"`
	Cookie    CookieConfig    `envPrefix:"COOKIE_"`
	Binding   BindingConfig   `envPrefix:"BINDING_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Redirect  RedirectConfig  `envPrefix:"REDIRECT_"`
	Audit     AuditConfig     `envPrefix:"AUDIT_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goSession APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	TokenLength   int           `env:"TOKEN_LENGTH"`
	MaxRetries    int           `env:"MAX_RETRIES"`
	TTL           time.Duration `env:"TTL"`
	SessionCookie bool          `env:"SESSION_COOKIE"`
	ClearInvalid  bool          `env:"CLEAR_INVALID"`
	Segment       string        `env:"SEGMENT"`
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig defines a public type used by goSession APIs.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	Name     string `env:"NAME"`
	Path     string `env:"PATH"`
	Domain   string `env:"DOMAIN"`
	Secure   bool   `env:"SECURE"`
	HTTPOnly bool   `env:"HTTP_ONLY"`
	SameSite string `env:"SAME_SITE"` // "lax" (default), "strict", "none"
}

/*
====================================
BINDING CONFIG
====================================
*/

// BindingConfig defines a public type used by goSession APIs.
//
// An empty Secret disables binding: the internal id is the token itself.
type BindingConfig struct {
	Secret     string   `env:"SECRET"`
	Algorithm  string   `env:"ALGORITHM"`
	Encoding   string   `env:"ENCODING"`
	Attributes []string `env:"ATTRIBUTES"`
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines a public type used by goSession APIs.
//
// Limits apply only when a limiter client is supplied through [Builder.WithRateLimiter].
type RateLimitConfig struct {
	Bucket     string `env:"BUCKET"`
	AddHeaders bool   `env:"ADD_HEADERS"`
}

/*
====================================
REDIRECT CONFIG
====================================
*/

// RedirectConfig defines a public type used by goSession APIs.
//
// RedirectConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedirectConfig struct {
	To string `env:"TO"`
	// AppendNext names the query parameter carrying the original path. Empty disables it.
	AppendNext string `env:"APPEND_NEXT"`
	OnTry      bool   `env:"ON_TRY"`
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goSession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"ENABLE_LATENCY_HISTOGRAMS"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TokenLength:  16,
			MaxRetries:   5,
			TTL:          24 * time.Hour,
			ClearInvalid: true,
			Segment:      "gosession",
		},
		Cookie: CookieConfig{
			Name:     "sid",
			Path:     "/",
			Secure:   true,
			HTTPOnly: true,
			SameSite: "lax",
		},
		Binding: BindingConfig{
			Algorithm:  "sha1",
			Encoding:   "base64",
			Attributes: []string{identity.AttrRemoteAddress, "headers.user-agent"},
		},
		RateLimit: RateLimitConfig{
			Bucket:     "session",
			AddHeaders: true,
		},
		Audit: AuditConfig{
			BufferSize: 1024,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Binding.Attributes != nil {
		out.Binding.Attributes = append([]string(nil), cfg.Binding.Attributes...)
	}
	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate returns the first configuration problem found, or nil.
func (c *Config) Validate() error {
	if c.Session.TokenLength < MinTokenLength {
		return fmt.Errorf("Session.TokenLength must be >= %d", MinTokenLength)
	}
	if c.Session.MaxRetries < 1 {
		return errors.New("Session.MaxRetries must be >= 1")
	}
	if !c.Session.SessionCookie && c.Session.TTL <= 0 {
		return errors.New("Session.TTL must be > 0 unless SessionCookie is set")
	}
	if c.Session.TTL < 0 {
		return errors.New("Session.TTL must not be negative")
	}
	if strings.TrimSpace(c.Session.Segment) == "" {
		return errors.New("Session.Segment must not be empty")
	}

	if strings.TrimSpace(c.Cookie.Name) == "" {
		return errors.New("Cookie.Name must not be empty")
	}
	if _, ok := parseSameSite(c.Cookie.SameSite); !ok {
		return errors.New("Cookie.SameSite must be lax, strict or none")
	}
	if strings.EqualFold(c.Cookie.SameSite, "none") && !c.Cookie.Secure {
		return errors.New("Cookie.SameSite none requires Cookie.Secure")
	}

	if c.Binding.Secret != "" {
		if len([]rune(c.Binding.Secret)) < MinSecretLength {
			return fmt.Errorf("Binding.Secret must be empty or at least %d characters", MinSecretLength)
		}
		if !identity.SupportedAlgorithm(c.Binding.Algorithm) {
			return fmt.Errorf("Binding.Algorithm %q is not supported", c.Binding.Algorithm)
		}
		if !identity.SupportedEncoding(c.Binding.Encoding) {
			return fmt.Errorf("Binding.Encoding %q is not supported", c.Binding.Encoding)
		}
		for _, attr := range c.Binding.Attributes {
			if !identity.ValidAttribute(attr) {
				return fmt.Errorf("Binding.Attributes entry %q is invalid", attr)
			}
		}
	}

	if strings.TrimSpace(c.RateLimit.Bucket) == "" {
		return errors.New("RateLimit.Bucket must not be empty")
	}

	if c.Redirect.AppendNext != "" && strings.ContainsAny(c.Redirect.AppendNext, "&=?# ") {
		return errors.New("Redirect.AppendNext must be a plain query parameter name")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be > 0 when audit is enabled")
	}

	return nil
}

func parseSameSite(v string) (http.SameSite, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "lax":
		return http.SameSiteLaxMode, true
	case "strict":
		return http.SameSiteStrictMode, true
	case "none":
		return http.SameSiteNoneMode, true
	default:
		return 0, false
	}
}
