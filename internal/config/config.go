package config

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const productionEnv = "production"

// Config is the full process configuration, read once at startup
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Blockchain BlockchainConfig
	Security   SecurityConfig
	Jobs       JobsConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

func (c ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, productionEnv)
}

// DatabaseConfig locates the postgres instance backing the tx journal
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL renders the connection string, escaping credentials
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	URL      string
	Password string
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BlockchainConfig holds the registry contract location and the keyed wallet
type BlockchainConfig struct {
	RPCURL               string
	ContractAddress      string
	ExpectedChainID      int64
	WalletPrivateKeys    []string
	AutoConnect          bool
	ConfirmTimeout       time.Duration
	ConfirmPollInterval  time.Duration
	EnumerateConcurrency int
	MaxEnumerate         uint64
}

// SecurityConfig holds operator credentials
type SecurityConfig struct {
	OperatorName         string
	OperatorPasswordHash string
	SessionEncryptionKey string
	IdempotencyTTL       time.Duration
}

// JobsConfig drives the pending-transaction reconciler
type JobsConfig struct {
	ReconcileInterval  time.Duration
	ReconcileAfter     time.Duration
	ReconcileDropAfter time.Duration
	ReconcileBatch     int
}

// Load reads the configuration from the environment. Unset or unparsable
// values fall back to their defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: env("SERVER_PORT", "8080"),
			Env:  env("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     envParsed("DB_PORT", 5432, strconv.Atoi),
			User:     env("DB_USER", "postgres"),
			Password: env("DB_PASSWORD", "postgres"),
			DBName:   env("DB_NAME", "property_registry"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      env("REDIS_URL", "redis://localhost:6379"),
			Password: env("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        env("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  envParsed("JWT_ACCESS_EXPIRY", 15*time.Minute, time.ParseDuration),
			RefreshExpiry: envParsed("JWT_REFRESH_EXPIRY", 7*24*time.Hour, time.ParseDuration),
		},
		Blockchain: BlockchainConfig{
			// Ganache defaults
			RPCURL:               env("RPC_URL", "http://127.0.0.1:7545"),
			ContractAddress:      env("CONTRACT_ADDRESS", "0x8da644e76f2d3174CFec4a235bD4f242A259E1c7"),
			ExpectedChainID:      envParsed("CHAIN_ID", int64(1337), parseInt64),
			WalletPrivateKeys:    envList("WALLET_PRIVATE_KEYS"),
			AutoConnect:          envParsed("WALLET_AUTO_CONNECT", false, strconv.ParseBool),
			ConfirmTimeout:       envParsed("TX_CONFIRM_TIMEOUT", 2*time.Minute, time.ParseDuration),
			ConfirmPollInterval:  envParsed("TX_CONFIRM_POLL_INTERVAL", 2*time.Second, time.ParseDuration),
			EnumerateConcurrency: envParsed("ENUMERATE_CONCURRENCY", 8, strconv.Atoi),
			MaxEnumerate:         envParsed("MAX_ENUMERATE", uint64(10_000), parseUint64),
		},
		Security: SecurityConfig{
			OperatorName:         env("OPERATOR_NAME", "operator"),
			OperatorPasswordHash: env("OPERATOR_PASSWORD_HASH", ""),
			SessionEncryptionKey: env("SESSION_ENCRYPTION_KEY", ""),
			IdempotencyTTL:       envParsed("IDEMPOTENCY_TTL", 24*time.Hour, time.ParseDuration),
		},
		Jobs: JobsConfig{
			ReconcileInterval:  envParsed("JOB_RECONCILE_INTERVAL", 30*time.Second, time.ParseDuration),
			ReconcileAfter:     envParsed("JOB_RECONCILE_AFTER", 5*time.Minute, time.ParseDuration),
			ReconcileDropAfter: envParsed("JOB_RECONCILE_DROP_AFTER", time.Hour, time.ParseDuration),
			ReconcileBatch:     envParsed("JOB_RECONCILE_BATCH", 50, strconv.Atoi),
		},
	}
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envParsed[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseUint64(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// envList splits a comma separated variable, dropping blanks
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
