package config

import (
	"fmt"
	"net/url"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Server   ServerConfig            `mapstructure:"server"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	AWS      AWSConfig               `mapstructure:"aws"`
	EIV      EIVConfig               `mapstructure:"eiv"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int `mapstructure:"write_timeout"` // milliseconds
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Warehouse     WarehouseConfig     `mapstructure:"warehouse"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

// PostgresConfig points at the relational store holding prediction results.
type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// WarehouseConfig points at the analytical store serving the reference dataset.
// Driver is "snowflake" or "postgres".
type WarehouseConfig struct {
	Driver    string `mapstructure:"driver"`
	Account   string `mapstructure:"account"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	Database  string `mapstructure:"database"`
	Schema    string `mapstructure:"schema"`
	Warehouse string `mapstructure:"warehouse"`
	Role      string `mapstructure:"role"`
	DSN       string `mapstructure:"dsn"` // used verbatim when set
	QueryFile string `mapstructure:"query_file"`
}

// GetDSN returns the driver-specific connection string.
func (w WarehouseConfig) GetDSN() string {
	if w.DSN != "" {
		return w.DSN
	}
	if w.Driver != "snowflake" {
		return ""
	}
	q := url.Values{}
	if w.Warehouse != "" {
		q.Set("warehouse", w.Warehouse)
	}
	if w.Role != "" {
		q.Set("role", w.Role)
	}
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s",
		url.QueryEscape(w.User), url.QueryEscape(w.Password), w.Account, w.Database, w.Schema)
	if encoded := q.Encode(); encoded != "" {
		dsn += "?" + encoded
	}
	return dsn
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AWSConfig covers the artifact bucket and the prediction event topic.
type AWSConfig struct {
	Region         string `mapstructure:"region"`
	ArtifactBucket string `mapstructure:"artifact_bucket"`
	ArtifactPrefix string `mapstructure:"artifact_prefix"`
	SNS            struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// EIVConfig holds the prediction pipeline settings.
type EIVConfig struct {
	// ArtifactSource is "file" or "s3".
	ArtifactSource string `mapstructure:"artifact_source"`
	ArtifactDir    string `mapstructure:"artifact_dir"`
	ManifestKey    string `mapstructure:"manifest_key"`

	GuardEnabled       bool     `mapstructure:"guard_enabled"`
	GuardBypassColumns []string `mapstructure:"guard_bypass_columns"`

	// BenefitResetDate is YYYY-MM-DD; empty means December 31 of the current year.
	BenefitResetDate string `mapstructure:"benefit_reset_date"`
	ResultTable      string `mapstructure:"result_table"`
	SnapshotTTL      int    `mapstructure:"snapshot_ttl"` // milliseconds, 0 disables the cache
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
