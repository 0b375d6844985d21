package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-signup-recorder/internal/application/signup"
	"github.com/go-signup-recorder/internal/domain"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// BackendName is reported in recorder status messages.
const BackendName = "MongoDB"

// Server error codes that mean the credential was rejected.
const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
)

// Connector returns a signup.Connector backed by MongoDB. The client is
// pinged within connectTimeout so a rejected credential fails construction.
func Connector(connectTimeout time.Duration) signup.Connector {
	return func(ctx context.Context, target domain.Target) (signup.Store, error) {
		uri, err := connectionURI(target)
		if err != nil {
			return nil, err
		}
		if err := validateDatabaseName(target.Database); err != nil {
			return nil, domain.NewConnectError(domain.KindDatabaseNotFound, "mongo database", err)
		}
		if err := validateCollectionName(target.Container); err != nil {
			return nil, domain.NewConnectError(domain.KindContainerNotFound, "mongo collection", err)
		}

		client, err := mongo.Connect(options.Client().
			ApplyURI(uri).
			SetConnectTimeout(connectTimeout))
		if err != nil {
			return nil, domain.NewConnectError(domain.KindInvalidEndpoint, "mongo connect", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, domain.NewConnectError(classify(err), "mongo ping", err)
		}

		repo := NewSignUpRepo(client, client.Database(target.Database), target.Container)
		repo.endpoint = redactURI(uri)
		return repo, nil
	}
}

// connectionURI picks the URI to dial. A ConnectionString credential carries
// its own URI; DefaultChain dials the endpoint and relies on whatever auth
// the URI or environment provides.
func connectionURI(target domain.Target) (string, error) {
	const op = "mongo connect"
	var uri string
	switch c := target.Credential.(type) {
	case domain.ConnectionString:
		uri = string(c)
	case domain.DefaultChain:
		uri = target.Endpoint
	case nil:
		return "", domain.NewConnectError(domain.KindInvalidCredentials, op, errors.New("no credential supplied"))
	default:
		return "", domain.NewConnectError(domain.KindInvalidCredentials, op,
			fmt.Errorf("credential kind %q is not supported by MongoDB", c.Kind()))
	}
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return "", domain.NewConnectError(domain.KindInvalidEndpoint, op, errors.New("URI must use the mongodb:// or mongodb+srv:// scheme"))
	}
	return uri, nil
}

// redactURI drops the userinfo and query of a mongodb URI so it can be
// shown in status messages.
func redactURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return ""
	}
	hosts, path := rest, ""
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		hosts, path = rest[:i], rest[i:]
	}
	if i := strings.LastIndex(hosts, "@"); i >= 0 {
		hosts = hosts[i+1:]
	}
	path, _, _ = strings.Cut(path, "?")
	return scheme + "://" + hosts + path
}

func classify(err error) domain.ConnectErrorKind {
	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorCode(codeAuthenticationFailed) || se.HasErrorCode(codeUnauthorized)) {
		return domain.KindInvalidCredentials
	}
	if strings.Contains(strings.ToLower(err.Error()), "authentication failed") {
		return domain.KindInvalidCredentials
	}
	return domain.KindInvalidEndpoint
}

func validateDatabaseName(name string) error {
	if name == "" {
		return errors.New("name is empty")
	}
	if len(name) >= 64 {
		return fmt.Errorf("database name %q must be shorter than 64 characters", name)
	}
	if strings.ContainsAny(name, "/\\. \"$*<>:|?\x00") {
		return fmt.Errorf("database name %q contains a reserved character", name)
	}
	return nil
}

func validateCollectionName(name string) error {
	if name == "" {
		return errors.New("name is empty")
	}
	if strings.HasPrefix(name, "system.") || strings.ContainsAny(name, "$\x00") {
		return fmt.Errorf("collection name %q is reserved", name)
	}
	return nil
}
