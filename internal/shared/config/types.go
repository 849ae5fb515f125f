package config

import "fmt"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// PagerDutyConfig configures the incident-lookup client.
type PagerDutyConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CatalogConfig configures where the service catalog documents live and how
// they are refreshed. The AWS SSO and Twingate families are independent YAML
// files; each is mirrored from S3 into a local path.
type CatalogConfig struct {
	S3Bucket       string `mapstructure:"s3_bucket"`
	S3Region       string `mapstructure:"s3_region"`
	S3Endpoint     string `mapstructure:"s3_endpoint"`
	S3KeyID        string `mapstructure:"s3_key_id"`
	S3Secret       string `mapstructure:"s3_secret"`
	AWSSSOKey      string `mapstructure:"aws_sso_key"`
	AWSSSOPath     string `mapstructure:"aws_sso_path"`
	TwingateKey    string `mapstructure:"twingate_key"`
	TwingatePath   string `mapstructure:"twingate_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ReconcileConfig controls the owner-reconciliation worker.
type ReconcileConfig struct {
	IntervalMinutes  int `mapstructure:"interval_minutes"`
	LockTTLSeconds   int `mapstructure:"lock_ttl_seconds"`
	EntryTimeoutSecs int `mapstructure:"entry_timeout_seconds"`
}
