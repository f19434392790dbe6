package config

import "time"

// Default configuration values.
const (
	DefaultPort          = 8765
	DefaultStubPort      = 8766
	DefaultAuthBaseURL   = "http://localhost:8766"
	DefaultAuthTimeout   = 15 * time.Second
	DefaultBackend       = "cookie"
	DefaultStoragePath   = ".ledgerdesk/sessions.db"
	DefaultStorageMaxAge = 30 * 24 * time.Hour
	DefaultRedisAddr     = "localhost:6379"
	DefaultLandingPath   = "/"
	DefaultLoginPath     = "/auth/login"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultConfigFile    = "ledgerdesk.yaml"
	DefaultConfigFileAlt = "ledgerdesk.yml"
)

// DefaultPublicPaths may be visited without a session.
func DefaultPublicPaths() []string {
	return []string{"/auth/login", "/auth/register", "/auth/error"}
}

// Defaults returns the flattened default values, keyed like the config file.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":             DefaultPort,
		"server.session_secret":   "",
		"server.dev":              false,
		"server.watch_dir":        "",
		"auth.base_url":           DefaultAuthBaseURL,
		"auth.timeout":            DefaultAuthTimeout.String(),
		"storage.backend":         DefaultBackend,
		"storage.path":            DefaultStoragePath,
		"storage.redis_addr":      DefaultRedisAddr,
		"storage.redis_db":        0,
		"storage.max_age":         DefaultStorageMaxAge.String(),
		"navigation.landing_path": DefaultLandingPath,
		"navigation.login_path":   DefaultLoginPath,
		"navigation.public_paths": DefaultPublicPaths(),
		"log.level":               DefaultLogLevel,
		"log.format":              DefaultLogFormat,
		"stub.port":               DefaultStubPort,
		"verbose":                 false,
	}
}

// DefaultStubUsers are served by the development login endpoint when the
// configuration lists none.
func DefaultStubUsers() []StubUser {
	return []StubUser{
		{Username: "admin", Password: "admin", Name: "Administrator", Role: "admin"},
		{Username: "staff", Password: "staff", Name: "Staff", Role: "staff",
			Permissions: []string{"rekon_settings"}},
		{Username: "approver", Password: "approver", Name: "Approver", Role: "approver"},
	}
}
