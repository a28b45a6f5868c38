package config

const (
	EnvPrefix = "HIJABINA"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv   = "HIJABINA_APP_ENV"
	EnvPort     = "HIJABINA_APP_PORT"
	EnvLogLevel = "HIJABINA_LOG_LEVEL"

	EnvDBDSN  = "HIJABINA_DB_DSN"
	EnvDBHost = "HIJABINA_DB_HOST"
	EnvDBPort = "HIJABINA_DB_PORT"
	EnvDBUser = "HIJABINA_DB_USER"
	EnvDBPass = "HIJABINA_DB_PASSWORD"
	EnvDBName = "HIJABINA_DB_NAME"

	EnvRedisURL  = "HIJABINA_REDIS_URL"
	EnvRedisAddr = "HIJABINA_REDIS_ADDR"

	EnvJWTSecret  = "HIJABINA_JWT_SECRET"
	EnvJWTIssuer  = "HIJABINA_JWT_ISSUER"
	EnvJWTExpMins = "HIJABINA_JWT_EXPIRATION_MINUTES"

	EnvFreeShippingThreshold = "HIJABINA_FREE_SHIPPING_THRESHOLD"
	EnvFlatShippingFee       = "HIJABINA_FLAT_SHIPPING_FEE"
	EnvCORSAllowedOrigins    = "HIJABINA_CORS_ALLOWED_ORIGINS"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
