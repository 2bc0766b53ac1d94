package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/opencrate/database"
)

// Config is the root configuration structure for OpenCrate.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Audit    AuditConfig    `yaml:"audit"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig contains connection settings for the record store.
type DatabaseConfig struct {
	// Type is the driver: mysql, postgres or sqlite3.
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// SQLite only.
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	MaxOpenConns int `yaml:"max_open_conns"`
}

// Connection converts the YAML section into a database.Config.
func (d DatabaseConfig) Connection() database.Config {
	return database.Config{
		Driver:       d.Type,
		Host:         d.Host,
		Port:         d.Port,
		Name:         d.Name,
		Charset:      d.Charset,
		User:         d.User,
		Password:     d.Password,
		Path:         d.Path,
		BusyTimeout:  d.BusyTimeout,
		WALMode:      d.WALMode,
		MaxOpenConns: d.MaxOpenConns,
	}
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// TopicPrefix is the root of every published topic.
	TopicPrefix string `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// AuditConfig controls the audit trail of record writes.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`

	// Source tags every entry written by this process.
	Source string `yaml:"source"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults), skipped when path is empty
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: OPENCRATE_SECTION_KEY
// For example: OPENCRATE_DB_HOST, OPENCRATE_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for defaults and environment only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type:        database.DriverMySQL,
			Host:        "localhost",
			Charset:     "utf8",
			Path:        "./data/opencrate.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "opencrate",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
			TopicPrefix: "opencrate",
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Bucket:        "opencrate",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Audit: AuditConfig{
			Enabled: true,
			Source:  "cli",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) error {
	// Database
	if v := os.Getenv("OPENCRATE_DB_TYPE"); v != "" {
		cfg.Database.Type = v
	}
	if v := os.Getenv("OPENCRATE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("OPENCRATE_DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing OPENCRATE_DB_PORT: %w", err)
		}
		cfg.Database.Port = port
	}
	if v := os.Getenv("OPENCRATE_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("OPENCRATE_DB_CHARSET"); v != "" {
		cfg.Database.Charset = v
	}
	if v := os.Getenv("OPENCRATE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("OPENCRATE_DB_PASS"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("OPENCRATE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("OPENCRATE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("OPENCRATE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("OPENCRATE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("OPENCRATE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("OPENCRATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if err := c.Database.Connection().Validate(); err != nil {
		errs = append(errs, "database: "+err.Error())
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.TopicPrefix == "" {
		errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if c.Audit.Enabled && c.Audit.Source == "" {
		errs = append(errs, "audit.source is required when audit is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetFlushInterval returns the InfluxDB flush interval as a Duration.
func (c *Config) GetFlushInterval() time.Duration {
	return time.Duration(c.InfluxDB.FlushInterval) * time.Second
}
