package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/leapstack-labs/ledgerdesk/internal/storage"
)

// MinSessionSecretLength is the shortest accepted cookie signing secret.
const MinSessionSecretLength = 16

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks if the configuration is valid. All problems are reported at once.
func Validate(c *Config) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		add("server.port %d out of range", c.Server.Port)
	}
	if s := c.Server.SessionSecret; s != "" && len(s) < MinSessionSecretLength {
		add("server.session_secret must be at least %d characters", MinSessionSecretLength)
	}

	if u, err := url.Parse(c.Auth.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("auth.base_url %q must be an http(s) URL", c.Auth.BaseURL)
	}
	if c.Auth.Timeout <= 0 {
		add("auth.timeout must be positive")
	}

	switch c.Storage.Backend {
	case storage.KindCookie, storage.KindMemory:
	case storage.KindSQLite:
		if c.Storage.Path == "" {
			add("storage.path is required for the sqlite backend")
		}
	case storage.KindRedis:
		if c.Storage.RedisAddr == "" {
			add("storage.redis_addr is required for the redis backend")
		}
	default:
		add("storage.backend %q is not one of cookie, sqlite, redis, memory", c.Storage.Backend)
	}
	if c.Storage.MaxAge < 0 {
		add("storage.max_age must not be negative")
	}

	for name, p := range map[string]string{
		"navigation.landing_path": c.Navigation.LandingPath,
		"navigation.login_path":   c.Navigation.LoginPath,
	} {
		if !strings.HasPrefix(p, "/") {
			add("%s %q must start with /", name, p)
		}
	}
	for _, p := range c.Navigation.PublicPaths {
		if !strings.HasPrefix(p, "/") {
			add("navigation.public_paths entry %q must start with /", p)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		add("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		add("log.format %q is not one of text, json", c.Log.Format)
	}

	if c.Stub.Port < 0 || c.Stub.Port > 65535 {
		add("stub.port %d out of range", c.Stub.Port)
	}
	for i, u := range c.Stub.Users {
		if u.Username == "" || u.Password == "" {
			add("stub.users[%d] needs a username and a password", i)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
