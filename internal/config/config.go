// Package config loads the hrassist configuration from file, environment
// and flags through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "HRASSIST"

type Config struct {
	Debug     bool            `mapstructure:"debug" yaml:"debug"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Assistant AssistantConfig `mapstructure:"assistant" yaml:"assistant"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Policy    PolicyConfig    `mapstructure:"policy" yaml:"policy"`
	AI        AIConfig        `mapstructure:"ai" yaml:"ai"`
	Events    EventsConfig    `mapstructure:"events" yaml:"events"`
	HRData    HRDataConfig    `mapstructure:"hrdata" yaml:"hrdata"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	RateLimit      float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst" yaml:"rate_burst"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// DatabaseConfig points at the learning table.
type DatabaseConfig struct {
	Driver  string        `mapstructure:"driver" yaml:"driver"`
	DSN     string        `mapstructure:"dsn" yaml:"dsn"`
	Retries int           `mapstructure:"retries" yaml:"retries"`
	Backoff time.Duration `mapstructure:"backoff" yaml:"backoff"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	Issuer    string `mapstructure:"issuer" yaml:"issuer"`
}

type AssistantConfig struct {
	TemplatesFile string `mapstructure:"templates_file" yaml:"templates_file"`
}

type SessionConfig struct {
	Backend       string        `mapstructure:"backend" yaml:"backend"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`
	BadgerPath    string        `mapstructure:"badger_path" yaml:"badger_path"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

type PolicyConfig struct {
	Source   string            `mapstructure:"source" yaml:"source"`
	CacheTTL time.Duration     `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	Paths    map[string]string `mapstructure:"paths" yaml:"paths"`
	GitHub   GitHubConfig      `mapstructure:"github" yaml:"github"`
	S3       S3Config          `mapstructure:"s3" yaml:"s3"`
	GCS      GCSConfig         `mapstructure:"gcs" yaml:"gcs"`
}

type GitHubConfig struct {
	Token   string `mapstructure:"token" yaml:"token"`
	Owner   string `mapstructure:"owner" yaml:"owner"`
	Repo    string `mapstructure:"repo" yaml:"repo"`
	Ref     string `mapstructure:"ref" yaml:"ref"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

type S3Config struct {
	Bucket          string        `mapstructure:"bucket" yaml:"bucket"`
	Prefix          string        `mapstructure:"prefix" yaml:"prefix"`
	Region          string        `mapstructure:"region" yaml:"region"`
	Endpoint        string        `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	LinkTTL         time.Duration `mapstructure:"link_ttl" yaml:"link_ttl"`
}

type GCSConfig struct {
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Prefix          string `mapstructure:"prefix" yaml:"prefix"`
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
}

// AIConfig switches the language model on. Provider details live under
// ai.providers and are resolved by the ai package.
type AIConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	DefaultProvider string `mapstructure:"default_provider" yaml:"default_provider"`
}

type EventsConfig struct {
	Brokers      []string      `mapstructure:"brokers" yaml:"brokers"`
	Topic        string        `mapstructure:"topic" yaml:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// HRDataConfig configures the employee record queries. Each query takes the
// employee id as its only parameter.
type HRDataConfig struct {
	Driver  string            `mapstructure:"driver" yaml:"driver"`
	DSN     string            `mapstructure:"dsn" yaml:"dsn"`
	Queries map[string]string `mapstructure:"queries" yaml:"queries"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 5.0)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "hrassist.db")
	v.SetDefault("database.retries", 3)
	v.SetDefault("database.backoff", time.Second)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("assistant.templates_file", "")

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", 5*time.Minute)
	v.SetDefault("session.badger_path", "")
	v.SetDefault("session.sweep_interval", time.Minute)

	v.SetDefault("policy.source", "none")
	v.SetDefault("policy.cache_ttl", time.Hour)
	v.SetDefault("policy.github.ref", "main")
	v.SetDefault("policy.github.token", "")
	v.SetDefault("policy.s3.link_ttl", time.Hour)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.default_provider", "")

	v.SetDefault("events.topic", "hrassist.turns")
	v.SetDefault("events.write_timeout", 2*time.Second)

	v.SetDefault("hrdata.driver", "")
	v.SetDefault("hrdata.dsn", "")
}

// BindEnv makes HRASSIST_SERVER_ADDR override server.addr and so on.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Session.Backend {
	case "memory":
	case "badger":
	default:
		return fmt.Errorf("session.backend must be memory or badger, got %q", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}

	switch c.Policy.Source {
	case "none", "":
	case "github":
		if c.Policy.GitHub.Owner == "" || c.Policy.GitHub.Repo == "" {
			return fmt.Errorf("policy.github.owner and policy.github.repo are required")
		}
	case "s3":
		if c.Policy.S3.Bucket == "" {
			return fmt.Errorf("policy.s3.bucket is required")
		}
	case "gcs":
		if c.Policy.GCS.Bucket == "" {
			return fmt.Errorf("policy.gcs.bucket is required")
		}
	default:
		return fmt.Errorf("policy.source must be none, github, s3 or gcs, got %q", c.Policy.Source)
	}

	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("server.rate_limit and server.rate_burst must not be negative")
	}
	if len(c.HRData.Queries) > 0 && c.HRData.DSN == "" {
		return fmt.Errorf("hrdata.dsn is required when hrdata.queries are set")
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	c.Auth.JWTSecret = mask(c.Auth.JWTSecret)
	c.Database.DSN = maskDSN(c.Database.DSN)
	c.HRData.DSN = maskDSN(c.HRData.DSN)
	c.Policy.GitHub.Token = mask(c.Policy.GitHub.Token)
	c.Policy.S3.SecretAccessKey = mask(c.Policy.S3.SecretAccessKey)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}

// maskDSN hides the password in user:pass@host style DSNs.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	userinfo := dsn[:at]
	colon := strings.LastIndex(userinfo, ":")
	if colon < 0 {
		return dsn
	}
	return userinfo[:colon+1] + "****" + dsn[at:]
}
