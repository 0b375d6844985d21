package domain

import "log/slog"

// Credential authenticates a store connection. The concrete variants are
// AccountKey, ConnectionString, AccessKeys and DefaultChain; each backend
// accepts the subset it understands and rejects the rest as invalid credentials.
type Credential interface {
	credential()
	// Kind names the variant without exposing secret material.
	Kind() string
}

// AccountKey is a shared account key (Cosmos DB primary/secondary key).
type AccountKey string

// ConnectionString carries endpoint and secret in one string
// (Cosmos DB "AccountEndpoint=...;AccountKey=..." or a mongodb:// URI).
type ConnectionString string

// AccessKeys is a static access key pair (AWS).
type AccessKeys struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// DefaultChain defers to the SDK's ambient credential chain
// (environment, workload identity, instance metadata).
type DefaultChain struct{}

func (AccountKey) credential()       {}
func (ConnectionString) credential() {}
func (AccessKeys) credential()       {}
func (DefaultChain) credential()     {}

func (AccountKey) Kind() string       { return "account_key" }
func (ConnectionString) Kind() string { return "connection_string" }
func (AccessKeys) Kind() string       { return "access_keys" }
func (DefaultChain) Kind() string     { return "default_chain" }

func (k AccountKey) LogValue() slog.Value       { return slog.StringValue(redacted(k.Kind())) }
func (c ConnectionString) LogValue() slog.Value { return slog.StringValue(redacted(c.Kind())) }
func (a AccessKeys) LogValue() slog.Value {
	return slog.GroupValue(slog.String("access_key_id", a.AccessKeyID), slog.String("secret", "[redacted]"))
}

func redacted(kind string) string { return kind + ":[redacted]" }
