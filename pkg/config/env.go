package config

// EnvPrefix is the envconfig prefix shared by every variable.
const EnvPrefix = "BUILDTRACK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "BUILDTRACK_APP_ENV"
	EnvPort                   = "BUILDTRACK_APP_PORT"
	EnvDBDSN                  = "BUILDTRACK_DB_DSN"
	EnvDBHost                 = "BUILDTRACK_DB_HOST"
	EnvDBUser                 = "BUILDTRACK_DB_USER"
	EnvDBName                 = "BUILDTRACK_DB_NAME"
	EnvRedisURL               = "BUILDTRACK_REDIS_URL"
	EnvJWTSecret              = "BUILDTRACK_JWT_SECRET"
	EnvJWTIssuer              = "BUILDTRACK_JWT_ISSUER"
	EnvJWTExpMins             = "BUILDTRACK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "BUILDTRACK_REFRESH_TOKEN_TTL_MINUTES"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
