package dynamo

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-signup-recorder/internal/domain"
)

// SignUpRepo writes sign-up documents to the "<database>.<container>" table.
// PK: id
type SignUpRepo struct {
	client    api
	database  string
	tableName string
}

func NewSignUpRepo(client api, database, tableName string) *SignUpRepo {
	return &SignUpRepo{client: client, database: database, tableName: tableName}
}

func (r *SignUpRepo) Name() string { return BackendName }

// ReadDatabase succeeds when at least one table belongs to the database,
// i.e. is named "<database>.<something>".
func (r *SignUpRepo) ReadDatabase(ctx context.Context) error {
	prefix := r.database + "."
	p := dynamodb.NewListTablesPaginator(r.client, &dynamodb.ListTablesInput{})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, name := range out.TableNames {
			if strings.HasPrefix(name, prefix) {
				return nil
			}
		}
	}
	return fmt.Errorf("no tables for database %s: %w", r.database, domain.ErrNotFound)
}

func (r *SignUpRepo) ReadContainer(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	return err
}

// Upsert writes rec with PutItem, which replaces any item with the same id.
// PutItem returns no attributes for the new item, so the stored document is
// the marshalled item itself.
func (r *SignUpRepo) Upsert(ctx context.Context, rec *domain.SignUp) (domain.Document, error) {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal sign-up: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal stored sign-up: %w", err)
	}
	return domain.Document(doc), nil
}
