package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-signup-recorder/internal/application/signup"
	"github.com/go-signup-recorder/internal/domain"
)

// BackendName is reported in recorder status messages.
const BackendName = "DynamoDB"

// api is the subset of *dynamodb.Client the repo and bootstrap use.
type api interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	ListTables(ctx context.Context, in *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Options configures the DynamoDB connector.
type Options struct {
	Region string
	// Bootstrap creates the sign-up table when it does not exist (LocalStack/dev).
	Bootstrap bool
}

var (
	databaseNameRE  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	containerNameRE = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// TableName maps a database/container pair onto a single DynamoDB table
// named "<database>.<container>".
func TableName(database, container string) (string, error) {
	if !databaseNameRE.MatchString(database) {
		return "", domain.NewConnectError(domain.KindDatabaseNotFound, "dynamo table name",
			fmt.Errorf("database %q must match %s", database, databaseNameRE))
	}
	if !containerNameRE.MatchString(container) {
		return "", domain.NewConnectError(domain.KindContainerNotFound, "dynamo table name",
			fmt.Errorf("container %q must match %s", container, containerNameRE))
	}
	name := database + "." + container
	if len(name) < 3 || len(name) > 255 {
		return "", domain.NewConnectError(domain.KindContainerNotFound, "dynamo table name",
			fmt.Errorf("table name %q must be 3-255 characters", name))
	}
	return name, nil
}

// Connector returns a signup.Connector backed by DynamoDB.
func Connector(opts Options) signup.Connector {
	return func(ctx context.Context, target domain.Target) (signup.Store, error) {
		tableName, err := TableName(target.Database, target.Container)
		if err != nil {
			return nil, err
		}
		client, err := NewClient(ctx, opts.Region, target.Endpoint, target.Credential)
		if err != nil {
			return nil, err
		}
		if opts.Bootstrap {
			created, err := Bootstrap(ctx, client, tableName)
			if err != nil {
				slog.WarnContext(ctx, "dynamo bootstrap failed", "table", tableName, "err", err)
			} else if created {
				slog.InfoContext(ctx, "created table", "table", tableName)
			}
		}
		return NewSignUpRepo(client, target.Database, tableName), nil
	}
}

// NewClient creates a DynamoDB client. When endpoint is set (LocalStack),
// it overrides the endpoint so all traffic goes to the local instance.
func NewClient(ctx context.Context, region, endpoint string, cred domain.Credential) (*dynamodb.Client, error) {
	const op = "dynamo connect"
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	switch c := cred.(type) {
	case domain.AccessKeys:
		if c.AccessKeyID == "" || c.SecretAccessKey == "" {
			return nil, domain.NewConnectError(domain.KindInvalidCredentials, op, fmt.Errorf("access key pair is incomplete"))
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
		))
	case domain.DefaultChain:
	case nil:
		return nil, domain.NewConnectError(domain.KindInvalidCredentials, op, fmt.Errorf("no credential supplied"))
	default:
		return nil, domain.NewConnectError(domain.KindInvalidCredentials, op,
			fmt.Errorf("credential kind %q is not supported by DynamoDB", c.Kind()))
	}

	if endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, domain.NewConnectError(domain.KindInvalidEndpoint, op, fmt.Errorf("endpoint %q is not an absolute URL", endpoint))
		}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, domain.NewConnectError(domain.KindInvalidEndpoint, op, fmt.Errorf("load AWS config: %w", err))
	}

	clientOpts := []func(*dynamodb.Options){}
	if endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	return dynamodb.NewFromConfig(awsCfg, clientOpts...), nil
}
