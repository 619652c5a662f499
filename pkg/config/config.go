package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Seed          SeedConfig
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
	Env          string `envconfig:"BUILDTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"BUILDTRACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BUILDTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BUILDTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"BUILDTRACK_DB_DSN"`

	Host     string `envconfig:"BUILDTRACK_DB_HOST"`
	Port     int    `envconfig:"BUILDTRACK_DB_PORT" default:"5432"`
	User     string `envconfig:"BUILDTRACK_DB_USER"`
	Password string `envconfig:"BUILDTRACK_DB_PASSWORD"`
	Name     string `envconfig:"BUILDTRACK_DB_NAME"`
	SSLMode  string `envconfig:"BUILDTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BUILDTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BUILDTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BUILDTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BUILDTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BUILDTRACK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BUILDTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"BUILDTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"BUILDTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BUILDTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BUILDTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BUILDTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BUILDTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BUILDTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BUILDTRACK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BUILDTRACK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"BUILDTRACK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"BUILDTRACK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BUILDTRACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BUILDTRACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BUILDTRACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BUILDTRACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BUILDTRACK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"BUILDTRACK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"BUILDTRACK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"BUILDTRACK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BUILDTRACK_AUTO_MIGRATE" default:"false"`
}

// SeedConfig controls the protected administrator account ensured at
// startup. The account is a normal user row with is_protected set; there is
// no code path that special-cases it.
type SeedConfig struct {
	AdminEmail     string `envconfig:"BUILDTRACK_SEED_ADMIN_EMAIL" default:"admin@buildtrack.local"`
	AdminPassword  string `envconfig:"BUILDTRACK_SEED_ADMIN_PASSWORD" default:"change-me-on-first-login"`
	AdminFirstName string `envconfig:"BUILDTRACK_SEED_ADMIN_FIRST_NAME" default:"Site"`
	AdminLastName  string `envconfig:"BUILDTRACK_SEED_ADMIN_LAST_NAME" default:"Administrator"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
