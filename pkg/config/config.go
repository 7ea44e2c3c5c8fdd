package config

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Encryption    EncryptionConfig
	Tax           TaxConfig
	Loyalty       LoyaltyConfig
	Receipt       ReceiptConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the derived values that envconfig cannot type-check on its own.
func (c *Config) Validate() error {
	var errs error
	if _, err := c.Tax.DefaultDecimal(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := c.Tax.Jurisdictions(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := c.Loyalty.Tiers(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := c.Encryption.RetiredKeyMap(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if strings.TrimSpace(c.Encryption.Key) == "" {
		errs = multierr.Append(errs, fmt.Errorf("%s is required", EnvEncryptionKey))
	}
	return errs
}

type AppConfig struct {
	Env          string `envconfig:"JUSTSELL_APP_ENV" required:"true"`
	Port         string `envconfig:"JUSTSELL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"JUSTSELL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"JUSTSELL_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"JUSTSELL_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"JUSTSELL_DB_DSN"`
	Driver string `envconfig:"JUSTSELL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"JUSTSELL_DB_HOST"`
	LegacyPort     int    `envconfig:"JUSTSELL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"JUSTSELL_DB_USER"`
	LegacyPassword string `envconfig:"JUSTSELL_DB_PASSWORD"`
	LegacyName     string `envconfig:"JUSTSELL_DB_NAME"`
	LegacySSLMode  string `envconfig:"JUSTSELL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"JUSTSELL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"JUSTSELL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"JUSTSELL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JUSTSELL_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"JUSTSELL_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"JUSTSELL_REDIS_URL"`
	Address      string        `envconfig:"JUSTSELL_REDIS_ADDR"`
	Password     string        `envconfig:"JUSTSELL_REDIS_PASSWORD"`
	DB           int           `envconfig:"JUSTSELL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JUSTSELL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JUSTSELL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JUSTSELL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JUSTSELL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JUSTSELL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"JUSTSELL_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"JUSTSELL_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"JUSTSELL_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"JUSTSELL_REFRESH_TOKEN_TTL_MINUTES" default:"720"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"JUSTSELL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"JUSTSELL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"JUSTSELL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"JUSTSELL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"JUSTSELL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"JUSTSELL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"JUSTSELL_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"JUSTSELL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"JUSTSELL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"JUSTSELL_AUTO_MIGRATE" default:"false"`
}

// EncryptionConfig carries the field-level encryption key material. Key is either a base64
// encoded 32 byte key or a passphrase that gets stretched with HKDF.
type EncryptionConfig struct {
	Key         string `envconfig:"JUSTSELL_ENCRYPTION_KEY"`
	KeyID       string `envconfig:"JUSTSELL_ENCRYPTION_KEY_ID" default:"k1"`
	RetiredKeys string `envconfig:"JUSTSELL_ENCRYPTION_RETIRED_KEYS"`
}

// RetiredKeyMap parses "kid:key,kid:key" pairs used to decrypt rows written before a rotation.
func (e EncryptionConfig) RetiredKeyMap() (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range splitList(e.RetiredKeys) {
		kid, key, ok := strings.Cut(pair, ":")
		kid = strings.TrimSpace(kid)
		key = strings.TrimSpace(key)
		if !ok || kid == "" || key == "" {
			return nil, fmt.Errorf("invalid retired key entry %q", pair)
		}
		if kid == e.KeyID {
			return nil, fmt.Errorf("retired key %q collides with the active key id", kid)
		}
		out[kid] = key
	}
	return out, nil
}

// IsRawKey reports whether the configured key decodes to raw AES-256 key bytes.
func (e EncryptionConfig) IsRawKey() bool {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(e.Key))
	return err == nil && len(decoded) == 32
}

type TaxConfig struct {
	DefaultRate       string `envconfig:"JUSTSELL_TAX_DEFAULT_RATE" default:"0"`
	JurisdictionRates string `envconfig:"JUSTSELL_TAX_JURISDICTION_RATES"`
}

// DefaultDecimal parses the fallback tax rate.
func (t TaxConfig) DefaultDecimal() (decimal.Decimal, error) {
	return parseRate(t.DefaultRate)
}

// Jurisdictions parses "OK:0.085,TX:0.0825" into a rate table keyed by upper-cased code.
func (t TaxConfig) Jurisdictions() (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, pair := range splitList(t.JurisdictionRates) {
		code, raw, ok := strings.Cut(pair, ":")
		code = strings.ToUpper(strings.TrimSpace(code))
		if !ok || code == "" {
			return nil, fmt.Errorf("invalid tax jurisdiction entry %q", pair)
		}
		rate, err := parseRate(raw)
		if err != nil {
			return nil, fmt.Errorf("jurisdiction %s: %w", code, err)
		}
		out[code] = rate
	}
	return out, nil
}

// LoyaltyConfig holds the tier table as "NAME:threshold" pairs, thresholds in currency units.
type LoyaltyConfig struct {
	TierThresholds string `envconfig:"JUSTSELL_LOYALTY_TIERS" default:"BRONZE:0"`
}

// TierThreshold is one band of the loyalty tier table.
type TierThreshold struct {
	Name     string
	MinCents int64
}

// Tiers parses the configured tier table, sorted ascending by threshold.
func (l LoyaltyConfig) Tiers() ([]TierThreshold, error) {
	var tiers []TierThreshold
	for _, pair := range splitList(l.TierThresholds) {
		name, raw, ok := strings.Cut(pair, ":")
		name = strings.ToUpper(strings.TrimSpace(name))
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid loyalty tier entry %q", pair)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || amount.IsNegative() {
			return nil, fmt.Errorf("invalid loyalty threshold for %s: %q", name, raw)
		}
		tiers = append(tiers, TierThreshold{Name: name, MinCents: amount.Shift(2).Round(0).IntPart()})
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%s must define at least one tier", EnvLoyaltyTiers)
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].MinCents <= tiers[i-1].MinCents {
			return nil, fmt.Errorf("loyalty tiers must be strictly ascending (%s after %s)", tiers[i].Name, tiers[i-1].Name)
		}
	}
	return tiers, nil
}

type ReceiptConfig struct {
	Footer    string `envconfig:"JUSTSELL_RECEIPT_FOOTER" default:"Thank you for shopping with us!"`
	ItemWidth int    `envconfig:"JUSTSELL_RECEIPT_ITEM_WIDTH" default:"20"`
}

func parseRate(raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid tax rate %q: %w", raw, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("tax rate %s out of range [0,1)", rate)
	}
	return rate, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = "file:justsell.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
