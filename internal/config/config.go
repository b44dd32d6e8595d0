package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/poll"
	"github.com/Alwanly/attribute-poll/pkg/retry"
	"github.com/Alwanly/attribute-poll/pkg/validator"
)

type Config struct {
	Poll     PollConfig     `yaml:"poll"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Admin    AdminConfig    `yaml:"admin"`
	Redis    RedisConfig    `yaml:"redis"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Connect  ConnectConfig  `yaml:"connect"`
}

// PollConfig accepts a reserved mark type; the engine logs it and every poll fails.
type PollConfig struct {
	BackoffSeconds         uint32 `yaml:"backoff_seconds"`
	DefaultIntervalSeconds uint32 `yaml:"default_interval_seconds" validate:"gt=0"`
	MarkType               uint32 `yaml:"mark_type"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type DatabaseConfig struct {
	// Path of the sqlite file. Empty keeps the attribute tree in memory.
	Path string `yaml:"path"`
}

type AdminConfig struct {
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password" validate:"required"`
}

// RedisConfig is optional; an empty Host disables the redis command transport.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gte=0,lte=65535"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Channel  string `yaml:"channel" validate:"required_with=Host"`
}

// MQTTConfig is optional; an empty Broker disables MQTT.
type MQTTConfig struct {
	Broker       string `yaml:"broker"`
	ClientID     string `yaml:"client_id" validate:"required_with=Broker"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	QoS          byte   `yaml:"qos" validate:"lte=2"`
	CommandTopic string `yaml:"command_topic" validate:"required_with=Broker"`
	ResolveTopic string `yaml:"resolve_topic"`
}

type ConnectConfig struct {
	MaxRetries            int    `yaml:"max_retries" validate:"gte=-1"`
	InitialBackoffSeconds uint32 `yaml:"initial_backoff_seconds"`
	MaxBackoffSeconds     uint32 `yaml:"max_backoff_seconds"`
}

func Default() *Config {
	d := poll.DefaultConfig()
	return &Config{
		Poll: PollConfig{
			BackoffSeconds:         d.Backoff,
			DefaultIntervalSeconds: d.DefaultInterval,
			MarkType:               uint32(d.PollMarkType),
		},
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "./data/attributes.db"},
		Admin:    AdminConfig{Username: "admin", Password: "password"},
		Redis:    RedisConfig{Port: 6379, Channel: "attribute-poll:commands"},
		MQTT: MQTTConfig{
			ClientID:     "attribute-poll",
			QoS:          1,
			CommandTopic: "attribute-poll/commands",
			ResolveTopic: "attribute-poll/resolve",
		},
		Connect: ConnectConfig{MaxRetries: 5, InitialBackoffSeconds: 1, MaxBackoffSeconds: 30},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", validator.TranslateError(err))
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Addr = envOrDefault("SERVER_ADDR", c.Server.Addr)
	c.Database.Path = envOrDefault("DATABASE_PATH", c.Database.Path)
	c.Admin.Username = envOrDefault("ADMIN_USER", c.Admin.Username)
	c.Admin.Password = envOrDefault("ADMIN_PASSWORD", c.Admin.Password)

	c.Redis.Host = envOrDefault("REDIS_HOST", c.Redis.Host)
	c.Redis.Password = envOrDefault("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.Channel = envOrDefault("REDIS_CHANNEL", c.Redis.Channel)

	c.MQTT.Broker = envOrDefault("MQTT_BROKER", c.MQTT.Broker)
	c.MQTT.ClientID = envOrDefault("MQTT_CLIENT_ID", c.MQTT.ClientID)
	c.MQTT.Username = envOrDefault("MQTT_USERNAME", c.MQTT.Username)
	c.MQTT.Password = envOrDefault("MQTT_PASSWORD", c.MQTT.Password)
	c.MQTT.CommandTopic = envOrDefault("MQTT_COMMAND_TOPIC", c.MQTT.CommandTopic)
	c.MQTT.ResolveTopic = envOrDefault("MQTT_RESOLVE_TOPIC", c.MQTT.ResolveTopic)

	return errors.Join(
		envUint32("POLL_BACKOFF", &c.Poll.BackoffSeconds),
		envUint32("POLL_DEFAULT_INTERVAL", &c.Poll.DefaultIntervalSeconds),
		envUint32("POLL_MARK_TYPE", &c.Poll.MarkType),
		envInt("REDIS_PORT", &c.Redis.Port),
		envInt("REDIS_DB", &c.Redis.DB),
		envInt("CONNECT_MAX_RETRIES", &c.Connect.MaxRetries),
		envUint32("CONNECT_INITIAL_BACKOFF", &c.Connect.InitialBackoffSeconds),
		envUint32("CONNECT_MAX_BACKOFF", &c.Connect.MaxBackoffSeconds),
	)
}

func (c *Config) PollEngine() poll.Config {
	return poll.Config{
		Backoff:         c.Poll.BackoffSeconds,
		DefaultInterval: c.Poll.DefaultIntervalSeconds,
		PollMarkType:    attribute.Type(c.Poll.MarkType),
	}
}

func (c *Config) Retry() retry.Config {
	return retry.Config{
		MaxRetries:     c.Connect.MaxRetries,
		InitialBackoff: time.Duration(c.Connect.InitialBackoffSeconds) * time.Second,
		MaxBackoff:     time.Duration(c.Connect.MaxBackoffSeconds) * time.Second,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

func (c *Config) RedisEnabled() bool { return c.Redis.Host != "" }
func (c *Config) MQTTEnabled() bool  { return c.MQTT.Broker != "" }

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envUint32 accepts decimal or 0x-prefixed values.
func envUint32(key string, dst *uint32) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 0, 32)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = uint32(n)
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
