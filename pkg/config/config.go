package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "FASHIO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	JWT   JWTConfig
	VNPay VNPayConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.VNPay.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FASHIO_APP_ENV" required:"true"`
	Port         string `envconfig:"FASHIO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FASHIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FASHIO_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"FASHIO_DB_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FASHIO_DB_DSN"`
	Driver string `envconfig:"FASHIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FASHIO_DB_HOST"`
	LegacyPort     int    `envconfig:"FASHIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FASHIO_DB_USER"`
	LegacyPassword string `envconfig:"FASHIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"FASHIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"FASHIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FASHIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FASHIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FASHIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FASHIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FASHIO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FASHIO_REDIS_ADDR"`
	Password     string        `envconfig:"FASHIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"FASHIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FASHIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FASHIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FASHIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FASHIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FASHIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FASHIO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FASHIO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FASHIO_JWT_EXPIRATION_MINUTES" required:"true"`
}

// VNPayConfig holds the gateway credentials and protocol constants. The hash
// secret and merchant code are always injected from the environment.
type VNPayConfig struct {
	BaseURL    string `envconfig:"FASHIO_VNPAY_BASE_URL" required:"true"`
	TmnCode    string `envconfig:"FASHIO_VNPAY_TMN_CODE" required:"true"`
	HashSecret string `envconfig:"FASHIO_VNPAY_HASH_SECRET" required:"true"`
	ReturnURL  string `envconfig:"FASHIO_VNPAY_RETURN_URL" required:"true"`
	Version    string `envconfig:"FASHIO_VNPAY_VERSION" default:"2.1.0"`
	Command    string `envconfig:"FASHIO_VNPAY_COMMAND" default:"pay"`
	CurrCode   string `envconfig:"FASHIO_VNPAY_CURR_CODE" default:"VND"`
	Locale     string `envconfig:"FASHIO_VNPAY_LOCALE" default:"vn"`
	OrderType  string `envconfig:"FASHIO_VNPAY_ORDER_TYPE" default:"other"`
}

func (v VNPayConfig) validate() error {
	if _, err := url.Parse(v.BaseURL); err != nil {
		return fmt.Errorf("invalid vnpay base url: %w", err)
	}
	if _, err := url.Parse(v.ReturnURL); err != nil {
		return fmt.Errorf("invalid vnpay return url: %w", err)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"FASHIO_DB_HOST": db.LegacyHost,
		"FASHIO_DB_USER": db.LegacyUser,
		"FASHIO_DB_NAME": db.LegacyName,
	}
	for _, env := range []string{"FASHIO_DB_HOST", "FASHIO_DB_USER", "FASHIO_DB_NAME"} {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either FASHIO_DB_DSN or %s are required", strings.Join(missing, ", "))
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
