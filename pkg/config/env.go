package config

const (
	EnvPrefix = "JUSTSELL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "JUSTSELL_APP_ENV"
	EnvPort   = "JUSTSELL_APP_PORT"

	EnvDBDSN  = "JUSTSELL_DB_DSN"
	EnvDBHost = "JUSTSELL_DB_HOST"
	EnvDBUser = "JUSTSELL_DB_USER"
	EnvDBName = "JUSTSELL_DB_NAME"

	EnvRedisURL = "JUSTSELL_REDIS_URL"

	EnvJWTSecret              = "JUSTSELL_JWT_SECRET"
	EnvJWTIssuer              = "JUSTSELL_JWT_ISSUER"
	EnvJWTExpMins             = "JUSTSELL_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "JUSTSELL_REFRESH_TOKEN_TTL_MINUTES"

	EnvEncryptionKey         = "JUSTSELL_ENCRYPTION_KEY"
	EnvEncryptionKeyID       = "JUSTSELL_ENCRYPTION_KEY_ID"
	EnvEncryptionRetiredKeys = "JUSTSELL_ENCRYPTION_RETIRED_KEYS"

	EnvTaxDefaultRate       = "JUSTSELL_TAX_DEFAULT_RATE"
	EnvTaxJurisdictionRates = "JUSTSELL_TAX_JURISDICTION_RATES"
	EnvLoyaltyTiers         = "JUSTSELL_LOYALTY_TIERS"

	EnvUseSQLite = "JUSTSELL_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
