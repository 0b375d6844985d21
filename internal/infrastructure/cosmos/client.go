package cosmos

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/go-signup-recorder/internal/application/signup"
	"github.com/go-signup-recorder/internal/domain"
)

// BackendName is reported in recorder status messages.
const BackendName = "CosmosDB"

// DefaultPartitionKey is the container partition key path sign-ups are
// written under unless configured otherwise.
const DefaultPartitionKey = "/userId"

// Connector returns a signup.Connector that builds a Cosmos DB client and
// resolves handles to the database and container. Handle resolution is
// local; reachability is checked later by ReadDatabase/ReadContainer.
// partitionKeyPath must match the container's partition key definition.
func Connector(partitionKeyPath string) signup.Connector {
	if partitionKeyPath == "" {
		partitionKeyPath = DefaultPartitionKey
	}
	return func(_ context.Context, target domain.Target) (signup.Store, error) {
		client, err := newClient(target)
		if err != nil {
			return nil, err
		}
		if err := validateName(target.Database); err != nil {
			return nil, domain.NewConnectError(domain.KindDatabaseNotFound, "cosmos database", err)
		}
		db, err := client.NewDatabase(target.Database)
		if err != nil {
			return nil, domain.NewConnectError(domain.KindDatabaseNotFound, "cosmos database", err)
		}
		if err := validateName(target.Container); err != nil {
			return nil, domain.NewConnectError(domain.KindContainerNotFound, "cosmos container", err)
		}
		pk, err := parsePartitionKeyPath(partitionKeyPath)
		if err != nil {
			return nil, domain.NewConnectError(domain.KindContainerNotFound, "cosmos container", err)
		}
		container, err := db.NewContainer(target.Container)
		if err != nil {
			return nil, domain.NewConnectError(domain.KindContainerNotFound, "cosmos container", err)
		}
		return &SignUpRepo{
			endpoint:     client.Endpoint(),
			database:     db,
			container:    container,
			partitionKey: pk,
		}, nil
	}
}

func newClient(target domain.Target) (*azcosmos.Client, error) {
	const op = "cosmos connect"
	switch cred := target.Credential.(type) {
	case domain.ConnectionString:
		client, err := azcosmos.NewClientFromConnectionString(string(cred), nil)
		if err != nil {
			return nil, domain.NewConnectError(classify(err), op, err)
		}
		return client, nil
	case domain.AccountKey:
		if err := validateEndpoint(target.Endpoint); err != nil {
			return nil, domain.NewConnectError(domain.KindInvalidEndpoint, op, err)
		}
		key, err := azcosmos.NewKeyCredential(string(cred))
		if err != nil {
			return nil, domain.NewConnectError(domain.KindInvalidCredentials, op, err)
		}
		client, err := azcosmos.NewClientWithKey(target.Endpoint, key, nil)
		if err != nil {
			return nil, domain.NewConnectError(classify(err), op, err)
		}
		return client, nil
	case domain.DefaultChain:
		if err := validateEndpoint(target.Endpoint); err != nil {
			return nil, domain.NewConnectError(domain.KindInvalidEndpoint, op, err)
		}
		tokenCred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, domain.NewConnectError(domain.KindInvalidCredentials, op, err)
		}
		client, err := azcosmos.NewClient(target.Endpoint, tokenCred, nil)
		if err != nil {
			return nil, domain.NewConnectError(classify(err), op, err)
		}
		return client, nil
	case nil:
		return nil, domain.NewConnectError(domain.KindInvalidCredentials, op, errors.New("no credential supplied"))
	default:
		return nil, domain.NewConnectError(domain.KindInvalidCredentials, op,
			fmt.Errorf("credential kind %q is not supported by Cosmos DB", cred.Kind()))
	}
}

// classify maps an SDK failure to a connect error kind: a 401 from the
// service means the credential was rejected, anything else is treated as
// an unusable endpoint.
func classify(err error) domain.ConnectErrorKind {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusUnauthorized {
		return domain.KindInvalidCredentials
	}
	return domain.KindInvalidEndpoint
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("endpoint %q must be an absolute http(s) URL", endpoint)
	}
	return nil
}

// validateName rejects ids Cosmos DB never accepts for databases and containers.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("name %q exceeds 255 characters", name)
	}
	if strings.ContainsAny(name, `/\?#`) || strings.HasSuffix(name, " ") {
		return fmt.Errorf("name %q contains a reserved character", name)
	}
	return nil
}

// parsePartitionKeyPath splits a path such as /userId or /profile/id into
// its property names.
func parsePartitionKeyPath(path string) ([]string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("partition key path %q must start with /", path)
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("partition key path %q has an empty segment", path)
		}
	}
	return parts, nil
}
