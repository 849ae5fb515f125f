package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "accessgate/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	PagerDuty sharedConfig.PagerDutyConfig `mapstructure:"pagerduty"`
	Catalog   sharedConfig.CatalogConfig   `mapstructure:"catalog"`
	Reconcile sharedConfig.ReconcileConfig `mapstructure:"reconcile"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("ACCESSGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// validate enforces settings without which the service cannot start. Missing
// catalog paths are a startup failure, not something to discover mid-request.
func validate(cfg *Config) error {
	if cfg.Catalog.AWSSSOPath == "" || cfg.Catalog.TwingatePath == "" {
		return fmt.Errorf("catalog.aws_sso_path and catalog.twingate_path must be set")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "accessgate_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("pagerduty.base_url", "https://api.pagerduty.com")
	viper.SetDefault("pagerduty.timeout_seconds", 10)

	viper.SetDefault("catalog.s3_region", "us-east-1")
	viper.SetDefault("catalog.aws_sso_key", "services-aws-sso.yaml")
	viper.SetDefault("catalog.twingate_key", "services-twingate.yaml")
	viper.SetDefault("catalog.timeout_seconds", 15)

	viper.SetDefault("reconcile.interval_minutes", 30)
	viper.SetDefault("reconcile.lock_ttl_seconds", 120)
	viper.SetDefault("reconcile.entry_timeout_seconds", 30)
}
