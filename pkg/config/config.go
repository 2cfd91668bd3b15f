package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MERCAFRESH_DB_DSN"
	EnvDBHost = "MERCAFRESH_DB_HOST"
	EnvDBUser = "MERCAFRESH_DB_USER"
	EnvDBName = "MERCAFRESH_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	Checkout     CheckoutConfig
	Webhook      WebhookConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MERCAFRESH_APP_ENV" required:"true"`
	Port         string `envconfig:"MERCAFRESH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MERCAFRESH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MERCAFRESH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"MERCAFRESH_DB_DSN"`

	LegacyHost     string `envconfig:"MERCAFRESH_DB_HOST"`
	LegacyPort     int    `envconfig:"MERCAFRESH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MERCAFRESH_DB_USER"`
	LegacyPassword string `envconfig:"MERCAFRESH_DB_PASSWORD"`
	LegacyName     string `envconfig:"MERCAFRESH_DB_NAME"`
	LegacySSLMode  string `envconfig:"MERCAFRESH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MERCAFRESH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERCAFRESH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERCAFRESH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERCAFRESH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MERCAFRESH_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MERCAFRESH_REDIS_ADDR"`
	Password     string        `envconfig:"MERCAFRESH_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERCAFRESH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERCAFRESH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERCAFRESH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERCAFRESH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERCAFRESH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERCAFRESH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MERCAFRESH_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MERCAFRESH_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MERCAFRESH_JWT_EXPIRATION_MINUTES" default:"60"`
}

type StripeConfig struct {
	APIKey string `envconfig:"MERCAFRESH_STRIPE_API_KEY"`
	Secret string `envconfig:"MERCAFRESH_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"MERCAFRESH_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CheckoutConfig struct {
	SuccessURL     string        `envconfig:"MERCAFRESH_CHECKOUT_SUCCESS_URL" required:"true"`
	CancelURL      string        `envconfig:"MERCAFRESH_CHECKOUT_CANCEL_URL" required:"true"`
	Currency       string        `envconfig:"MERCAFRESH_CHECKOUT_CURRENCY" default:"pen"`
	Locale         string        `envconfig:"MERCAFRESH_CHECKOUT_LOCALE" default:"es"`
	SessionTimeout time.Duration `envconfig:"MERCAFRESH_CHECKOUT_SESSION_TIMEOUT" default:"10s"`
}

type WebhookConfig struct {
	// DedupTTL bounds how long a processed event id is remembered.
	// Stripe retries the same event for up to three days.
	DedupTTL time.Duration `envconfig:"MERCAFRESH_WEBHOOK_DEDUP_TTL" default:"96h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MERCAFRESH_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
