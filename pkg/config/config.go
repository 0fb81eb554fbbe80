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
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Razorpay     RazorpayConfig
	Checkout     CheckoutConfig
	Cron         CronConfig
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
	Env          string `envconfig:"STARFASHION_APP_ENV" required:"true"`
	Port         string `envconfig:"STARFASHION_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STARFASHION_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STARFASHION_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"STARFASHION_DB_DSN"`

	Host     string `envconfig:"STARFASHION_DB_HOST"`
	Port     int    `envconfig:"STARFASHION_DB_PORT" default:"5432"`
	User     string `envconfig:"STARFASHION_DB_USER"`
	Password string `envconfig:"STARFASHION_DB_PASSWORD"`
	Name     string `envconfig:"STARFASHION_DB_NAME"`
	SSLMode  string `envconfig:"STARFASHION_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STARFASHION_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STARFASHION_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STARFASHION_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STARFASHION_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either STARFASHION_DB_DSN or host/user/name parts are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STARFASHION_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STARFASHION_REDIS_ADDR"`
	Password     string        `envconfig:"STARFASHION_REDIS_PASSWORD"`
	DB           int           `envconfig:"STARFASHION_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STARFASHION_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STARFASHION_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STARFASHION_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STARFASHION_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STARFASHION_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STARFASHION_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STARFASHION_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STARFASHION_JWT_EXPIRATION_MINUTES" default:"60"`
}

type RazorpayConfig struct {
	KeyID         string `envconfig:"STARFASHION_RAZORPAY_KEY_ID" required:"true"`
	KeySecret     string `envconfig:"STARFASHION_RAZORPAY_KEY_SECRET" required:"true"`
	WebhookSecret string `envconfig:"STARFASHION_RAZORPAY_WEBHOOK_SECRET" required:"true"`
	Currency      string `envconfig:"STARFASHION_RAZORPAY_CURRENCY" default:"INR"`
}

type CheckoutConfig struct {
	ReservationTTL time.Duration `envconfig:"STARFASHION_CHECKOUT_RESERVATION_TTL" default:"10m"`
}

type CronConfig struct {
	SweepInterval time.Duration `envconfig:"STARFASHION_CRON_SWEEP_INTERVAL" default:"60s"`
	LockTTL       time.Duration `envconfig:"STARFASHION_CRON_LOCK_TTL" default:"55s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STARFASHION_AUTO_MIGRATE" default:"false"`
}
