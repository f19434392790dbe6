// Package config provides the configuration types shared by the server and
// the CLI. Loading lives in internal/cli/config.
package config

import "time"

// Config holds all LedgerDesk configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Auth       AuthConfig       `koanf:"auth"`
	Storage    StorageConfig    `koanf:"storage"`
	Navigation NavigationConfig `koanf:"navigation"`
	Log        LogConfig        `koanf:"log"`
	Stub       StubConfig       `koanf:"stub"`
	Verbose    bool             `koanf:"verbose"`
}

// ServerConfig holds configuration for the dashboard server.
type ServerConfig struct {
	Port int `koanf:"port"`
	// SessionSecret signs the client cookie. Empty means a random secret per process.
	SessionSecret string `koanf:"session_secret"`
	Dev           bool   `koanf:"dev"`
	// WatchDir is watched in dev mode; changes reload every open tab.
	WatchDir string `koanf:"watch_dir"`
}

// AuthConfig points at the accounting backend's login endpoint.
type AuthConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// StorageConfig selects where session values are kept.
type StorageConfig struct {
	Backend       string `koanf:"backend"` // cookie, sqlite, redis, memory
	Path          string `koanf:"path"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	// MaxAge is how long an idle sqlite session is kept. Zero keeps it forever.
	MaxAge time.Duration `koanf:"max_age"`
}

// NavigationConfig holds the paths the navigation guard works with.
type NavigationConfig struct {
	LandingPath string   `koanf:"landing_path"`
	LoginPath   string   `koanf:"login_path"`
	PublicPaths []string `koanf:"public_paths"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text, json
}

// StubConfig configures the development login endpoint.
type StubConfig struct {
	Port  int        `koanf:"port"`
	Users []StubUser `koanf:"users"`
}

// StubUser is an account served by the development login endpoint.
type StubUser struct {
	Username    string   `koanf:"username"`
	Password    string   `koanf:"password"`
	Name        string   `koanf:"name"`
	Role        string   `koanf:"role"`
	Permissions []string `koanf:"permissions"`
}
