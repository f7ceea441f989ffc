package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// initConfig sets up the config loader with defaults, env binding, and config file.
func initConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	// CACHEWARDEN_REFRESH_WE_RUNNING_DOCKER -> refresh.we_running_docker
	v.SetEnvPrefix("CACHEWARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("toml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("failed to stat config file: %w", statErr)
		}
	}

	return v, nil
}

// setDefaults configures all default values per spec §6.
func setDefaults(v *viper.Viper) {
	v.SetDefault("capture.iface", "enp5s0")

	v.SetDefault("refresh.purge_wake_up_interval", 60)
	v.SetDefault("refresh.max_records_to_refresh_in_cycle", 100)
	v.SetDefault("refresh.min_ttl_to_keep_record", 15)
	v.SetDefault("refresh.max_ttl_to_keep_record", 86400)
	v.SetDefault("refresh.we_running_docker", false)
	v.SetDefault("refresh.min_time_to_expire_to_purge", 30)
	v.SetDefault("refresh.docker_container_name", "my-unbound")

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
	v.SetDefault("logging.structured_format", "json")
	v.SetDefault("logging.include_pid", false)
	v.SetDefault("logging.extra_fields", map[string]string{})

	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 3030)

	v.SetDefault("persistence.enabled", false)
	v.SetDefault("persistence.dsn", "cachewarden.sqlite")
}

// loadFromSource loads configuration from file and environment.
func loadFromSource(configPath string) (*Config, error) {
	v, err := initConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	loadCaptureConfig(v, cfg)
	loadRefreshConfig(v, cfg)
	loadLoggingConfig(v, cfg)
	loadAPIConfig(v, cfg)
	loadPersistenceConfig(v, cfg)

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadCaptureConfig(v *viper.Viper, cfg *Config) {
	cfg.Capture.Iface = v.GetString("capture.iface")
}

func loadRefreshConfig(v *viper.Viper, cfg *Config) {
	cfg.Refresh.PurgeWakeUpIntervalSeconds = v.GetInt64("refresh.purge_wake_up_interval")
	cfg.Refresh.MaxRecordsToRefreshInCycle = v.GetInt("refresh.max_records_to_refresh_in_cycle")
	cfg.Refresh.MinTTLToKeepRecord = uint32(v.GetUint("refresh.min_ttl_to_keep_record"))
	cfg.Refresh.MaxTTLToKeepRecord = uint32(v.GetUint("refresh.max_ttl_to_keep_record"))
	cfg.Refresh.WeRunningDocker = v.GetBool("refresh.we_running_docker")
	cfg.Refresh.MinTimeToExpireToPurgeSeconds = v.GetInt64("refresh.min_time_to_expire_to_purge")
	cfg.Refresh.DockerContainerName = v.GetString("refresh.docker_container_name")
}

func loadLoggingConfig(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = strings.ToUpper(v.GetString("logging.level"))
	cfg.Logging.Structured = v.GetBool("logging.structured")
	cfg.Logging.StructuredFormat = v.GetString("logging.structured_format")
	cfg.Logging.IncludePID = v.GetBool("logging.include_pid")
	cfg.Logging.ExtraFields = v.GetStringMapString("logging.extra_fields")
}

func loadAPIConfig(v *viper.Viper, cfg *Config) {
	cfg.API.Host = v.GetString("api.host")
	cfg.API.Port = v.GetInt("api.port")
}

func loadPersistenceConfig(v *viper.Viper, cfg *Config) {
	cfg.Persistence.Enabled = v.GetBool("persistence.enabled")
	cfg.Persistence.DSN = v.GetString("persistence.dsn")
}

// normalizeConfig validates and normalizes the configuration.
func normalizeConfig(cfg *Config) error {
	if cfg.Capture.Iface == "" {
		cfg.Capture.Iface = "enp5s0"
	}

	if cfg.Refresh.MinTTLToKeepRecord >= cfg.Refresh.MaxTTLToKeepRecord {
		return errors.New("refresh.min_ttl_to_keep_record must be < refresh.max_ttl_to_keep_record")
	}
	if cfg.Refresh.PurgeWakeUpIntervalSeconds <= 0 {
		return errors.New("refresh.purge_wake_up_interval must be > 0")
	}
	if cfg.Refresh.MaxRecordsToRefreshInCycle <= 0 {
		return errors.New("refresh.max_records_to_refresh_in_cycle must be > 0")
	}
	if cfg.Refresh.MinTimeToExpireToPurgeSeconds < 0 {
		return errors.New("refresh.min_time_to_expire_to_purge must be >= 0")
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}

	if cfg.API.Host == "" {
		cfg.API.Host = "127.0.0.1"
	}
	if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
		return errors.New("api.port must be 1..65535")
	}

	return nil
}
