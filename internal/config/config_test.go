package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/go-signup-recorder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Config reads for the duration of t.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_PORT", "APP_ENV", "LOG_LEVEL",
		"STORE_BACKEND", "STORE_ENDPOINT", "STORE_KEY", "STORE_CONNECTION_STRING",
		"STORE_DATABASE", "STORE_CONTAINER", "STORE_PARTITION_KEY", "ENABLE_MESSAGE_FEEDBACK",
		"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN",
		"DYNAMO_BOOTSTRAP", "MONGO_CONNECT_TIMEOUT", "GOOGLE_CLIENT_ID",
		"JWT_PRIVATE_KEY_PATH", "JWT_PUBLIC_KEY_PATH", "JWT_EXPIRY",
		"ALLOWED_ORIGINS", "CALLBACK_RATE_PER_SEC", "CALLBACK_BURST", "TRUST_PROXY_HEADERS",
	} {
		t.Setenv(k, "") // restores the original value on cleanup
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, BackendCosmos, cfg.Store.Backend)
	assert.Equal(t, "db_signups", cfg.Store.Database)
	assert.Equal(t, "signups", cfg.Store.Container)
	assert.False(t, cfg.Store.EnableMessageFeedback)
	assert.Equal(t, 10*time.Second, cfg.MongoConnectTimeout)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 5.0, cfg.CallbackRatePerSec)
	assert.Equal(t, "/userId", cfg.Store.PartitionKey)
	assert.False(t, cfg.TrustProxyHeaders)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", " Mongo ")
	t.Setenv("STORE_DATABASE", "app")
	t.Setenv("STORE_CONTAINER", "events")
	t.Setenv("ENABLE_MESSAGE_FEEDBACK", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMongo, cfg.Store.Backend)
	assert.Equal(t, "app", cfg.Store.Database)
	assert.Equal(t, "events", cfg.Store.Container)
	assert.True(t, cfg.Store.EnableMessageFeedback)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_UnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "sqlite")
	_, err := Load()
	assert.ErrorContains(t, err, "unknown STORE_BACKEND")
}

func TestStoreCredential_Precedence(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Backend: BackendCosmos, ConnectionString: "AccountEndpoint=x;AccountKey=y;", Key: "k"}}
	assert.Equal(t, domain.ConnectionString("AccountEndpoint=x;AccountKey=y;"), cfg.StoreCredential())

	cfg.Store.ConnectionString = ""
	assert.Equal(t, domain.AccountKey("k"), cfg.StoreCredential())

	cfg.Store.Key = ""
	cfg.AWSAccessKeyID = "AKIA"
	assert.Equal(t, domain.DefaultChain{}, cfg.StoreCredential())

	cfg.Store.Backend = BackendDynamo
	cfg.AWSSecretKey = "secret"
	assert.Equal(t, domain.AccessKeys{AccessKeyID: "AKIA", SecretAccessKey: "secret"}, cfg.StoreCredential())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "loud"}).SlogLevel())
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, (&Config{AppEnv: "Development"}).IsDevelopment())
	assert.False(t, (&Config{AppEnv: "production"}).IsDevelopment())
}
