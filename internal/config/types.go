// Package config loads the daemon's runtime settings from Settings.toml
// using Viper, with environment variable and CLI-flag overrides layered on
// top in that order.
//
// Environment variables use the CACHEWARDEN_ prefix and underscore-separated
// keys:
//   - CACHEWARDEN_REFRESH_PURGE_WAKE_UP_INTERVAL -> refresh.purge_wake_up_interval
//   - CACHEWARDEN_REFRESH_WE_RUNNING_DOCKER -> refresh.we_running_docker
package config

import (
	"os"
	"strings"
)

// RefreshConfig holds the scheduler tunables from spec §6.
type RefreshConfig struct {
	PurgeWakeUpIntervalSeconds     int64  `toml:"purge_wake_up_interval"          mapstructure:"purge_wake_up_interval"`
	MaxRecordsToRefreshInCycle     int    `toml:"max_records_to_refresh_in_cycle" mapstructure:"max_records_to_refresh_in_cycle"`
	MinTTLToKeepRecord             uint32 `toml:"min_ttl_to_keep_record"          mapstructure:"min_ttl_to_keep_record"`
	MaxTTLToKeepRecord             uint32 `toml:"max_ttl_to_keep_record"          mapstructure:"max_ttl_to_keep_record"`
	WeRunningDocker                bool   `toml:"we_running_docker"               mapstructure:"we_running_docker"`
	MinTimeToExpireToPurgeSeconds  int64  `toml:"min_time_to_expire_to_purge"     mapstructure:"min_time_to_expire_to_purge"`
	DockerContainerName            string `toml:"docker_container_name"           mapstructure:"docker_container_name"`
}

// CaptureConfig names the interface the packet observer attaches to.
type CaptureConfig struct {
	Iface string `toml:"iface" mapstructure:"iface"`
}

// LoggingConfig mirrors the ambient slog setup shared across the teacher's
// components.
type LoggingConfig struct {
	Level            string            `toml:"level"             mapstructure:"level"`
	Structured       bool              `toml:"structured"        mapstructure:"structured"`
	StructuredFormat string            `toml:"structured_format" mapstructure:"structured_format"`
	IncludePID       bool              `toml:"include_pid"       mapstructure:"include_pid"`
	ExtraFields      map[string]string `toml:"extra_fields"      mapstructure:"extra_fields"`
}

// APIConfig controls the management HTTP surface (spec §6: bound to
// 127.0.0.1:3030 by default).
type APIConfig struct {
	Host string `toml:"host" mapstructure:"host"`
	Port int    `toml:"port" mapstructure:"port"`
}

// PersistenceConfig controls the optional SQLite answer store.
type PersistenceConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	DSN     string `toml:"dsn"     mapstructure:"dsn"`
}

// Config is the root configuration structure loaded from Settings.toml.
type Config struct {
	Capture     CaptureConfig     `toml:"capture"     mapstructure:"capture"`
	Refresh     RefreshConfig     `toml:"refresh"     mapstructure:"refresh"`
	Logging     LoggingConfig     `toml:"logging"     mapstructure:"logging"`
	API         APIConfig         `toml:"api"         mapstructure:"api"`
	Persistence PersistenceConfig `toml:"persistence" mapstructure:"persistence"`
}

// ResolveConfigPath determines the config file path from flag or environment.
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv("CACHEWARDEN_CONFIG")); v != "" {
		return v
	}
	return "Settings.toml"
}

// Load loads configuration from a TOML file with environment variable
// overrides. This is the main entry point for loading configuration.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (CACHEWARDEN_*)
//  2. Settings.toml values
//  3. Default values
//
// A missing config file at the resolved path is not an error: defaults
// apply and env vars still override them.
func Load(path string) (*Config, error) {
	return loadFromSource(path)
}
