// Package config defines the configuration structures for the general
// applications engine. No I/O lives here, only plain data types and validation.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// RedisConfig holds Redis connection parameters for the fee and holiday caches.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	FeeTTL       time.Duration `mapstructure:"fee_ttl"`
}

// KafkaConfig names the brokers and topics used by the worker.
type KafkaConfig struct {
	Brokers              []string `mapstructure:"brokers"`
	GroupID              string   `mapstructure:"group_id"`
	DecisionTopic        string   `mapstructure:"decision_topic"`
	HwfTopic             string   `mapstructure:"hwf_topic"`
	BusinessProcessTopic string   `mapstructure:"business_process_topic"`
	DeadLetterTopic      string   `mapstructure:"dead_letter_topic"`
	MaxRetries           int      `mapstructure:"max_retries"`
}

// MinIOConfig holds the object store used for generated order documents.
type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// FeeKeywords are the fee-registry keywords for each fee category.
type FeeKeywords struct {
	VaryOrSuspend             string `mapstructure:"vary_or_suspend"`
	WithoutNotice             string `mapstructure:"without_notice"`
	WithNotice                string `mapstructure:"with_notice"`
	CertificateOfSatisfaction string `mapstructure:"certificate_of_satisfaction"`
}

// FeeRegistryConfig configures the fee lookup collaborator.
type FeeRegistryConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Channel       string        `mapstructure:"channel"`
	Jurisdiction1 string        `mapstructure:"jurisdiction1"`
	Jurisdiction2 string        `mapstructure:"jurisdiction2"`
	Keywords      FeeKeywords   `mapstructure:"keywords"`
}

// PaymentsConfig configures the payment collaborator.
type PaymentsConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	ServiceName string        `mapstructure:"service_name"`
	SiteID      string        `mapstructure:"site_id"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// IdentityConfig configures token resolution and service credentials.
type IdentityConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	ClientID       string        `mapstructure:"client_id"`
	ClientSecret   string        `mapstructure:"client_secret"`
	SystemUsername string        `mapstructure:"system_username"`
	SystemPassword string        `mapstructure:"system_password"`
	Scope          string        `mapstructure:"scope"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// NotifyConfig maps template keys to provider template ids.
type NotifyConfig struct {
	BaseURL            string            `mapstructure:"base_url"`
	APIKey             string            `mapstructure:"api_key"`
	CaseDetailsBaseURL string            `mapstructure:"case_details_base_url"`
	Templates          map[string]string `mapstructure:"templates"`
}

// CalendarConfig points at the bank holiday sources.
type CalendarConfig struct {
	HolidaysFile    string        `mapstructure:"holidays_file"`
	BankHolidaysURL string        `mapstructure:"bank_holidays_url"`
	Division        string        `mapstructure:"division"`
	CutOffHour      int           `mapstructure:"cut_off_hour"`
	Location        string        `mapstructure:"location"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// FeaturesConfig holds feature toggles. They are resolved once at startup and
// passed into services.
type FeaturesConfig struct {
	CoSCEnabled bool `mapstructure:"cosc_enabled"`
}

// WorkerConfig holds the kafka worker pool settings.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	HealthPort  int `mapstructure:"health_port"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

type MetricsConfig struct {
	Namespace            string `mapstructure:"namespace"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
}

// Config is the root configuration structure.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	MinIO       MinIOConfig       `mapstructure:"minio"`
	FeeRegistry FeeRegistryConfig `mapstructure:"fee_registry"`
	Payments    PaymentsConfig    `mapstructure:"payments"`
	Identity    IdentityConfig    `mapstructure:"identity"`
	Notify      NotifyConfig      `mapstructure:"notify"`
	Calendar    CalendarConfig    `mapstructure:"calendar"`
	Features    FeaturesConfig    `mapstructure:"features"`
	Worker      WorkerConfig      `mapstructure:"worker"`
	Log         LogConfig         `mapstructure:"log"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("config: server.rate_limit_rps must be ≥ 0, got %v", c.Server.RateLimitRPS)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}

	if c.MinIO.Bucket == "" {
		return fmt.Errorf("config: minio.bucket is required")
	}

	if err := requireURL("fee_registry.base_url", c.FeeRegistry.BaseURL); err != nil {
		return err
	}
	k := c.FeeRegistry.Keywords
	if k.VaryOrSuspend == "" || k.WithoutNotice == "" || k.WithNotice == "" || k.CertificateOfSatisfaction == "" {
		return fmt.Errorf("config: fee_registry.keywords must define every fee keyword")
	}
	if err := requireURL("payments.base_url", c.Payments.BaseURL); err != nil {
		return err
	}
	if err := requireURL("notify.case_details_base_url", c.Notify.CaseDetailsBaseURL); err != nil {
		return err
	}

	if c.Calendar.CutOffHour < 0 || c.Calendar.CutOffHour > 23 {
		return fmt.Errorf("config: calendar.cut_off_hour %d is out of range [0, 23]", c.Calendar.CutOffHour)
	}
	if _, err := time.LoadLocation(c.Calendar.Location); err != nil {
		return fmt.Errorf("config: calendar.location %q: %w", c.Calendar.Location, err)
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

func requireURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("config: %s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: %s %q is not an absolute URL", field, raw)
	}
	return nil
}

//Personal.AI order the ending
