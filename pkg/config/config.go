package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Weather  WeatherConfig
	Cron     CronConfig
	Work     WorkConfig
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
	Env          string `envconfig:"SCHEDTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"SCHEDTRACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SCHEDTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SCHEDTRACK_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"SCHEDTRACK_AUTO_MIGRATE" default:"false"`

	CORSOrigins []string `envconfig:"SCHEDTRACK_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SCHEDTRACK_DB_DSN"`
	Driver string `envconfig:"SCHEDTRACK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SCHEDTRACK_DB_HOST"`
	LegacyPort     int    `envconfig:"SCHEDTRACK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SCHEDTRACK_DB_USER"`
	LegacyPassword string `envconfig:"SCHEDTRACK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SCHEDTRACK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SCHEDTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SCHEDTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SCHEDTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SCHEDTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCHEDTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("database DSN or host/user/name settings are required")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.LegacyHost, d.LegacyPort, d.LegacyUser, d.LegacyPassword, d.LegacyName, d.LegacySSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"SCHEDTRACK_REDIS_URL"`
	Address      string        `envconfig:"SCHEDTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"SCHEDTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCHEDTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCHEDTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCHEDTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCHEDTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCHEDTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCHEDTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SCHEDTRACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SCHEDTRACK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SCHEDTRACK_JWT_EXPIRATION_MINUTES" default:"480"`
	SessionTTLMinutes int    `envconfig:"SCHEDTRACK_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the redis session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SCHEDTRACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SCHEDTRACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SCHEDTRACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SCHEDTRACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SCHEDTRACK_ARGON_KEY_LEN" default:"32"`
}

type WeatherConfig struct {
	GeocodeBaseURL  string        `envconfig:"SCHEDTRACK_WEATHER_GEOCODE_BASE_URL" default:"https://geocoding-api.open-meteo.com/v1"`
	ForecastBaseURL string        `envconfig:"SCHEDTRACK_WEATHER_FORECAST_BASE_URL" default:"https://api.open-meteo.com/v1"`
	Timeout         time.Duration `envconfig:"SCHEDTRACK_WEATHER_TIMEOUT" default:"10s"`
	CacheTTL        time.Duration `envconfig:"SCHEDTRACK_WEATHER_CACHE_TTL" default:"15m"`
	Timezone        string        `envconfig:"SCHEDTRACK_WEATHER_TIMEZONE" default:"America/Los_Angeles"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SCHEDTRACK_CRON_INTERVAL" default:"24h"`
	LockKey  string        `envconfig:"SCHEDTRACK_CRON_LOCK_KEY" default:"cron"`
	LockTTL  time.Duration `envconfig:"SCHEDTRACK_CRON_LOCK_TTL" default:"25h"`
}

type WorkConfig struct {
	DeletedRetentionDays int `envconfig:"SCHEDTRACK_DELETED_RETENTION_DAYS" default:"30"`
}
