package config

import "errors"

// Validation errors returned by Config.Validate.
var (
	ErrAppPortRange            = errors.New("APP_PORT must be between 1 and 65535")
	ErrLogLevelEmpty           = errors.New("LOG_LEVEL cannot be empty")
	ErrLogFormatEmpty          = errors.New("LOG_FORMAT cannot be empty")
	ErrStoreDriverUnsupported  = errors.New("STORE_DRIVER must be either postgres or mongo")
	ErrPostgresDSNRequired     = errors.New("POSTGRES_DSN cannot be empty when STORE_DRIVER=postgres")
	ErrPostgresMaxConns        = errors.New("POSTGRES_MAX_CONNS must be greater than 0")
	ErrMongoURIRequired        = errors.New("MONGO_URI cannot be empty when STORE_DRIVER=mongo")
	ErrMongoDBNameRequired     = errors.New("MONGO_DB_NAME cannot be empty when STORE_DRIVER=mongo")
	ErrBcryptCostRange         = errors.New("BCRYPT_COST must be between 8 and 16")
	ErrSignInRatePerMin        = errors.New("SIGNIN_RATE_PER_MIN must be greater than or equal to 1")
	ErrJWTSecretRequired       = errors.New("JWT_SECRET cannot be empty (set DEV_MODE=true for an ephemeral dev secret)")
	ErrJWTSecretTooShort       = errors.New("JWT_SECRET must be at least 32 characters for HS256")
	ErrJWTAlgorithmUnsupported = errors.New("JWT_ALGORITHM must be HS256")
	ErrAccessTokenMinutes      = errors.New("ACCESS_TOKEN_MINUTES must be greater than 0")
	ErrAuthCookieNameEmpty     = errors.New("AUTH_COOKIE_NAME cannot be empty")
	ErrWSMaxSessionSec         = errors.New("WS_MAX_SESSION_SEC must be greater than 0")
	ErrWSOutboxBuffer          = errors.New("WS_OUTBOX_BUFFER must be greater than 0")
	ErrWSMaxMessageBytes       = errors.New("WS_MAX_MESSAGE_BYTES must be greater than 0")
)
