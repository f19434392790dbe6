// Package config loads LedgerDesk configuration for the CLI.
//
// Values are layered with koanf, lowest precedence first: built-in
// defaults, the YAML config file, LEDGERDESK_* environment variables and
// explicitly set command-line flags.
package config

import (
	intconfig "github.com/leapstack-labs/ledgerdesk/internal/config"
)

// Config is the loaded configuration.
type Config = intconfig.Config

// LogConfig is the log section of Config.
type LogConfig = intconfig.LogConfig

// StubUser is an account of the development login endpoint.
type StubUser = intconfig.StubUser

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "LEDGERDESK_"

// KeyAnnotation marks a flag with the config key it sets, for flags whose
// name does not match their key (e.g. serve --port sets server.port).
const KeyAnnotation = "ledgerdesk_config_key"
