// Package config loads and validates app config from env and an optional .env
// file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty runs with in-memory stores.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisAddr is the Redis address for challenge storage (e.g. localhost:6379).
	// Empty disables Redis; Postgres or memory is used instead.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// RedisPassword is the optional Redis password.
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// EnabledProviders is a comma-separated list of rail provider types to
	// register at bootstrap (e.g. "domestic,crossborder").
	EnabledProviders string `mapstructure:"ENABLED_PROVIDERS"`
	// RegistryAllowOverride enables last-registered-wins on provider type
	// collisions instead of the default fail-fast.
	RegistryAllowOverride bool `mapstructure:"REGISTRY_ALLOW_OVERRIDE"`
	// HomeCurrency is the settlement currency of the domestic rail.
	HomeCurrency string `mapstructure:"HOME_CURRENCY"`

	// SCAChallengeTTL is the challenge lifetime (e.g. "15m").
	SCAChallengeTTL string `mapstructure:"SCA_CHALLENGE_TTL"`
	// SCAMaxAttempts is the per-challenge verification attempt limit.
	SCAMaxAttempts int `mapstructure:"SCA_MAX_ATTEMPTS"`
	// SCAAmountThreshold is the amount at and above which operations require
	// SCA, as a decimal string (e.g. "100.00").
	SCAAmountThreshold string `mapstructure:"SCA_AMOUNT_THRESHOLD"`
	// SCAPolicyPath is an optional path to a Rego policy that replaces the
	// embedded default SCA policy.
	SCAPolicyPath string `mapstructure:"SCA_POLICY_PATH"`
	// CodeReturnToClient when true enables dev code mode: no SMS, the code is
	// stored for GET /dev/sca/code. Must not be true when Env is production.
	CodeReturnToClient bool `mapstructure:"CODE_RETURN_TO_CLIENT"`

	// SimRefPrivateKey is the PEM-encoded private key (RSA or ECDSA) used to
	// sign simulation references; used with SIMREF_PUBLIC_KEY.
	SimRefPrivateKey string `mapstructure:"SIMREF_PRIVATE_KEY"`
	// SimRefPublicKey is the PEM-encoded public key used to validate
	// simulation references.
	SimRefPublicKey string `mapstructure:"SIMREF_PUBLIC_KEY"`
	// SimRefIssuer is the iss claim of simulation references.
	SimRefIssuer string `mapstructure:"SIMREF_ISSUER"`
	// SimRefAudience is the aud claim of simulation references.
	SimRefAudience string `mapstructure:"SIMREF_AUDIENCE"`
	// SimRefTTL bounds how long a committing call can follow its simulation.
	SimRefTTL string `mapstructure:"SIMREF_TTL"`

	// SMSAPIKey is the API key for the SMS delivery provider. Required when
	// SCA codes are delivered by SMS and dev code mode is off.
	SMSAPIKey string `mapstructure:"SMS_API_KEY"`
	// SMSSender is the optional sender ID for SMS delivery.
	SMSSender string `mapstructure:"SMS_SENDER"`
	// SMSBaseURL is the SMS provider API base URL.
	SMSBaseURL string `mapstructure:"SMS_BASE_URL"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses
	// (e.g. "localhost:9092"). When set, the gateway emits operation events.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// KafkaEventsTopic is the Kafka topic for operation events.
	KafkaEventsTopic string `mapstructure:"KAFKA_EVENTS_TOPIC"`
	// KafkaGroupID is the consumer group ID for the events worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// OTLPEndpoint is the OTLP gRPC endpoint for traces, metrics, and logs
	// (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("ENABLED_PROVIDERS", "domestic,crossborder")
	v.SetDefault("REGISTRY_ALLOW_OVERRIDE", false)
	v.SetDefault("HOME_CURRENCY", "EUR")
	v.SetDefault("SCA_CHALLENGE_TTL", "15m")
	v.SetDefault("SCA_MAX_ATTEMPTS", 3)
	v.SetDefault("SCA_AMOUNT_THRESHOLD", "100.00")
	v.SetDefault("SCA_POLICY_PATH", "")
	v.SetDefault("CODE_RETURN_TO_CLIENT", false)
	v.SetDefault("SIMREF_ISSUER", "railgate-sim")
	v.SetDefault("SIMREF_AUDIENCE", "railgate-api")
	v.SetDefault("SIMREF_TTL", "1h")
	v.SetDefault("SMS_BASE_URL", "https://app.smslocal.in/api/smsapi")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_EVENTS_TOPIC", "railgate-operations")
	v.SetDefault("KAFKA_GROUP_ID", "railgate-events-worker")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.CodeReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: CODE_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	if cfg.SCAMaxAttempts <= 0 {
		return nil, errors.New("config: SCA_MAX_ATTEMPTS must be positive")
	}

	if _, err := decimal.NewFromString(cfg.SCAAmountThreshold); err != nil {
		return nil, errors.New("config: SCA_AMOUNT_THRESHOLD must be a decimal amount")
	}

	return &cfg, nil
}

// ChallengeTTL parses SCAChallengeTTL as a time.Duration. Returns 15m if unset
// or invalid.
func (c *Config) ChallengeTTL() time.Duration {
	d, err := time.ParseDuration(c.SCAChallengeTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// SimRefDuration parses SimRefTTL as a time.Duration. Returns 1h if unset or
// invalid.
func (c *Config) SimRefDuration() time.Duration {
	d, err := time.ParseDuration(c.SimRefTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// AmountThreshold returns SCAAmountThreshold as a decimal. Load validated the
// string; a zero decimal is returned if it is somehow invalid.
func (c *Config) AmountThreshold() decimal.Decimal {
	d, err := decimal.NewFromString(c.SCAAmountThreshold)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated
// config. Used to decide if event publication is enabled (non-empty list) and
// to create the producer.
func (c *Config) KafkaBrokersList() []string {
	return splitList(c.KafkaBrokers)
}

// EnabledProvidersList returns the provider types to register at bootstrap.
func (c *Config) EnabledProvidersList() []string {
	return splitList(c.EnabledProviders)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
