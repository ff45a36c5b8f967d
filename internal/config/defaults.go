package config

import "time"

const (
	DefaultServerPort = 4550
	DefaultServerMode = "release"

	DefaultRedisAddr = "localhost:6379"

	DefaultKafkaBroker          = "localhost:9092"
	DefaultKafkaGroupID         = "ga-engine"
	DefaultDecisionTopic        = "ga.decision.requested"
	DefaultHwfTopic             = "ga.hwf.requested"
	DefaultBusinessProcessTopic = "ga.business-process"
	DefaultDeadLetterTopic      = "ga.dead-letter"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "ga-orders"

	DefaultFeeRegistryURL = "http://localhost:4411"
	DefaultPaymentsURL    = "http://localhost:4421"
	DefaultCaseDetailsURL = "http://localhost:3000"
	DefaultIdentityScope  = "openid profile roles"

	DefaultBankHolidaysURL = "https://www.gov.uk/bank-holidays.json"
	DefaultDivision        = "england-and-wales"
	DefaultCutOffHour      = 16
	DefaultLocation        = "Europe/London"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerConcurrency = 4
)

// ApplyDefaults fills every zero-value field in cfg. Explicit values win.
// CutOffHour 0 is indistinguishable from unset and is defaulted.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = 50
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 100
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "ga:"
	}
	if cfg.Redis.FeeTTL == 0 {
		cfg.Redis.FeeTTL = 6 * time.Hour
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.DecisionTopic == "" {
		cfg.Kafka.DecisionTopic = DefaultDecisionTopic
	}
	if cfg.Kafka.HwfTopic == "" {
		cfg.Kafka.HwfTopic = DefaultHwfTopic
	}
	if cfg.Kafka.BusinessProcessTopic == "" {
		cfg.Kafka.BusinessProcessTopic = DefaultBusinessProcessTopic
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = DefaultDeadLetterTopic
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}

	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = 15 * time.Minute
	}

	if cfg.FeeRegistry.BaseURL == "" {
		cfg.FeeRegistry.BaseURL = DefaultFeeRegistryURL
	}
	if cfg.FeeRegistry.Timeout == 0 {
		cfg.FeeRegistry.Timeout = 10 * time.Second
	}
	if cfg.FeeRegistry.Channel == "" {
		cfg.FeeRegistry.Channel = "default"
	}
	if cfg.FeeRegistry.Jurisdiction1 == "" {
		cfg.FeeRegistry.Jurisdiction1 = "civil"
	}
	if cfg.FeeRegistry.Jurisdiction2 == "" {
		cfg.FeeRegistry.Jurisdiction2 = "civil"
	}
	kw := &cfg.FeeRegistry.Keywords
	if kw.VaryOrSuspend == "" {
		kw.VaryOrSuspend = "AppnToVaryOrSuspend"
	}
	if kw.WithoutNotice == "" {
		kw.WithoutNotice = "GeneralAppWithoutNotice"
	}
	if kw.WithNotice == "" {
		kw.WithNotice = "GAOnNotice"
	}
	if kw.CertificateOfSatisfaction == "" {
		kw.CertificateOfSatisfaction = "CertificateOfSorC"
	}

	if cfg.Payments.BaseURL == "" {
		cfg.Payments.BaseURL = DefaultPaymentsURL
	}
	if cfg.Payments.ServiceName == "" {
		cfg.Payments.ServiceName = "civil"
	}
	if cfg.Payments.SiteID == "" {
		cfg.Payments.SiteID = "AAA7"
	}
	if cfg.Payments.Timeout == 0 {
		cfg.Payments.Timeout = 10 * time.Second
	}
	if cfg.Identity.Timeout == 0 {
		cfg.Identity.Timeout = 5 * time.Second
	}
	if cfg.Identity.Scope == "" {
		cfg.Identity.Scope = DefaultIdentityScope
	}

	if cfg.Notify.CaseDetailsBaseURL == "" {
		cfg.Notify.CaseDetailsBaseURL = DefaultCaseDetailsURL
	}

	if cfg.Calendar.BankHolidaysURL == "" {
		cfg.Calendar.BankHolidaysURL = DefaultBankHolidaysURL
	}
	if cfg.Calendar.Division == "" {
		cfg.Calendar.Division = DefaultDivision
	}
	if cfg.Calendar.CutOffHour == 0 {
		cfg.Calendar.CutOffHour = DefaultCutOffHour
	}
	if cfg.Calendar.Location == "" {
		cfg.Calendar.Location = DefaultLocation
	}
	if cfg.Calendar.RefreshInterval == 0 {
		cfg.Calendar.RefreshInterval = 24 * time.Hour
	}

	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = 8081
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "ga_engine"
	}
}

//Personal.AI order the ending
