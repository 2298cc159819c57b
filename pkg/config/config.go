package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is applied by envconfig when resolving variables.
const EnvPrefix = "cartline"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Pricing       PricingConfig
	PayPal        PayPalConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Notifications NotificationsConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"CARTLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARTLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"CARTLINE_DB_DSN"`

	Host     string `envconfig:"CARTLINE_DB_HOST"`
	Port     int    `envconfig:"CARTLINE_DB_PORT" default:"5432"`
	User     string `envconfig:"CARTLINE_DB_USER"`
	Password string `envconfig:"CARTLINE_DB_PASSWORD"`
	Name     string `envconfig:"CARTLINE_DB_NAME"`
	SSLMode  string `envconfig:"CARTLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARTLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTLINE_REDIS_URL"`
	Address      string        `envconfig:"CARTLINE_REDIS_ADDR"`
	Password     string        `envconfig:"CARTLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CARTLINE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CARTLINE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CARTLINE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PricingConfig struct {
	TaxRatePercent int `envconfig:"CARTLINE_TAX_RATE_PERCENT" default:"15"`
}

type PayPalConfig struct {
	BaseURL      string        `envconfig:"CARTLINE_PAYPAL_BASE_URL" default:"https://api-m.sandbox.paypal.com"`
	ClientID     string        `envconfig:"CARTLINE_PAYPAL_CLIENT_ID"`
	ClientSecret string        `envconfig:"CARTLINE_PAYPAL_CLIENT_SECRET"`
	Timeout      time.Duration `envconfig:"CARTLINE_PAYPAL_TIMEOUT" default:"15s"`
	Currency     string        `envconfig:"CARTLINE_PAYPAL_CURRENCY" default:"USD"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"CARTLINE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"CARTLINE_PUBSUB_NOTIFICATION_TOPIC" default:"cartline-notification-events"`
	NotificationSubscription string `envconfig:"CARTLINE_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"cartline-notification-worker"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CARTLINE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CARTLINE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CARTLINE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type NotificationsConfig struct {
	FromEmail string `envconfig:"CARTLINE_NOTIFICATIONS_FROM_EMAIL" default:"orders@cartline.dev"`
	SiteName  string `envconfig:"CARTLINE_NOTIFICATIONS_SITE_NAME" default:"Cartline"`
	SiteURL   string `envconfig:"CARTLINE_NOTIFICATIONS_SITE_URL" default:"https://cartline.dev"`
}

type RateLimitConfig struct {
	PaymentWindow    time.Duration `envconfig:"CARTLINE_RATE_LIMIT_PAYMENT_WINDOW" default:"1m"`
	PaymentIPLimit   int           `envconfig:"CARTLINE_RATE_LIMIT_PAYMENT_IP_LIMIT" default:"30"`
	PaymentUserLimit int           `envconfig:"CARTLINE_RATE_LIMIT_PAYMENT_USER_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CARTLINE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for envName, value := range map[string]string{
		"CARTLINE_DB_HOST": db.Host,
		"CARTLINE_DB_USER": db.User,
		"CARTLINE_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, envName)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either CARTLINE_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
