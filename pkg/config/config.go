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
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Storefront    StorefrontConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storefront.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HIJABINA_APP_ENV" required:"true"`
	Port         string `envconfig:"HIJABINA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HIJABINA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HIJABINA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"HIJABINA_DB_DSN"`

	Host     string `envconfig:"HIJABINA_DB_HOST"`
	Port     int    `envconfig:"HIJABINA_DB_PORT" default:"5432"`
	User     string `envconfig:"HIJABINA_DB_USER"`
	Password string `envconfig:"HIJABINA_DB_PASSWORD"`
	Name     string `envconfig:"HIJABINA_DB_NAME"`
	SSLMode  string `envconfig:"HIJABINA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HIJABINA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HIJABINA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HIJABINA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HIJABINA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"HIJABINA_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HIJABINA_REDIS_URL"`
	Address      string        `envconfig:"HIJABINA_REDIS_ADDR"`
	Password     string        `envconfig:"HIJABINA_REDIS_PASSWORD"`
	DB           int           `envconfig:"HIJABINA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HIJABINA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HIJABINA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HIJABINA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HIJABINA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HIJABINA_REDIS_WRITE_TIMEOUT" default:"5s"`
	// LocalStateTTL bounds how long an untouched device cart or wishlist survives.
	LocalStateTTL time.Duration `envconfig:"HIJABINA_REDIS_LOCAL_STATE_TTL" default:"720h"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"HIJABINA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"HIJABINA_JWT_ISSUER" default:"hijabina"`
	ExpirationMinutes      int    `envconfig:"HIJABINA_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"HIJABINA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HIJABINA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HIJABINA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HIJABINA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HIJABINA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HIJABINA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"HIJABINA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"HIJABINA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"HIJABINA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"HIJABINA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"HIJABINA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"HIJABINA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HIJABINA_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"HIJABINA_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"HIJABINA_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"HIJABINA_PUBSUB_ORDERS_TOPIC" default:"hijabina-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"HIJABINA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"HIJABINA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"HIJABINA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// StorefrontConfig carries the shipping policy and checkout/stream tuning.
type StorefrontConfig struct {
	FreeShippingThreshold int64         `envconfig:"HIJABINA_FREE_SHIPPING_THRESHOLD" default:"200000"`
	FlatShippingFee       int64         `envconfig:"HIJABINA_FLAT_SHIPPING_FEE" default:"15000"`
	CheckoutLockTTL       time.Duration `envconfig:"HIJABINA_CHECKOUT_LOCK_TTL" default:"30s"`
	CollaboratorTimeout   time.Duration `envconfig:"HIJABINA_COLLABORATOR_TIMEOUT" default:"5s"`
	StreamHeartbeat       time.Duration `envconfig:"HIJABINA_STREAM_HEARTBEAT" default:"25s"`
}

func (s StorefrontConfig) validate() error {
	if s.FreeShippingThreshold < 0 || s.FlatShippingFee < 0 {
		return fmt.Errorf("%s and %s must not be negative", EnvFreeShippingThreshold, EnvFlatShippingFee)
	}
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"HIJABINA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
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
	for _, env := range discreteDBEnvVars {
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
