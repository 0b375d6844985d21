package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-signup-recorder/internal/domain"
)

// Backends understood by STORE_BACKEND.
const (
	BackendCosmos = "cosmos"
	BackendDynamo = "dynamo"
	BackendMongo  = "mongo"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"3000"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Store StoreConfig

	AWSRegion           string        `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID      string        `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey        string        `env:"AWS_SECRET_ACCESS_KEY"`
	AWSSessionToken     string        `env:"AWS_SESSION_TOKEN"`
	DynamoBootstrap     bool          `env:"DYNAMO_BOOTSTRAP" envDefault:"false"`
	MongoConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`

	GoogleClientID    string        `env:"GOOGLE_CLIENT_ID"`
	JWTPrivateKeyPath string        `env:"JWT_PRIVATE_KEY_PATH" envDefault:"./private_key.pem"`
	JWTPublicKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH" envDefault:"./public_key.pem"`
	JWTExpiry         time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`

	AllowedOrigins     []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","` // CORS allowed origins
	CallbackRatePerSec float64  `env:"CALLBACK_RATE_PER_SEC" envDefault:"5"`
	CallbackBurst      int      `env:"CALLBACK_BURST" envDefault:"10"`

	// TrustProxyHeaders takes the client IP from True-Client-IP, X-Real-IP or
	// X-Forwarded-For. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// StoreConfig selects and addresses the document store sign-ups are written to.
type StoreConfig struct {
	Backend               string `env:"STORE_BACKEND" envDefault:"cosmos"`
	Endpoint              string `env:"STORE_ENDPOINT"` // empty for AWS DynamoDB, LocalStack URL in dev
	Key                   string `env:"STORE_KEY"`
	ConnectionString      string `env:"STORE_CONNECTION_STRING"`
	Database              string `env:"STORE_DATABASE" envDefault:"db_signups"`
	Container             string `env:"STORE_CONTAINER" envDefault:"signups"`
	// PartitionKey is the Cosmos DB container's partition key path. The
	// container must be created with the same path.
	PartitionKey          string `env:"STORE_PARTITION_KEY" envDefault:"/userId"`
	EnableMessageFeedback bool   `env:"ENABLE_MESSAGE_FEEDBACK" envDefault:"false"`
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	switch cfg.Store.Backend {
	case BackendCosmos, BackendDynamo, BackendMongo:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
	return &cfg, nil
}

// StoreCredential picks the credential variant from what is configured:
// a connection string wins, then an account key, then static AWS keys for
// DynamoDB, else the SDK's default chain.
func (c *Config) StoreCredential() domain.Credential {
	switch {
	case c.Store.ConnectionString != "":
		return domain.ConnectionString(c.Store.ConnectionString)
	case c.Store.Key != "":
		return domain.AccountKey(c.Store.Key)
	case c.Store.Backend == BackendDynamo && c.AWSAccessKeyID != "":
		return domain.AccessKeys{
			AccessKeyID:     c.AWSAccessKeyID,
			SecretAccessKey: c.AWSSecretKey,
			SessionToken:    c.AWSSessionToken,
		}
	default:
		return domain.DefaultChain{}
	}
}

// IsDevelopment reports whether APP_ENV is development. Cookies are then
// issued without the Secure flag so plain-http localhost works.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
