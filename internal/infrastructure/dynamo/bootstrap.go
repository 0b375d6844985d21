package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UserIndex lets a user's sign-ups be queried in creation order.
const UserIndex = "userId-createdAt-index"

// Bootstrap creates the sign-up table keyed by id, with UserIndex, when it
// does not exist yet. It reports whether a table was created; an existing
// table is left untouched and is not an error.
func Bootstrap(ctx context.Context, client api, tableName string) (bool, error) {
	_, err := client.CreateTable(ctx, signUpTable(tableName))
	if err == nil {
		return true, nil
	}
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		return false, nil
	}
	return false, fmt.Errorf("create table %s: %w", tableName, err)
}

func signUpTable(name string) *dynamodb.CreateTableInput {
	attr := func(n string) types.AttributeDefinition {
		return types.AttributeDefinition{AttributeName: aws.String(n), AttributeType: types.ScalarAttributeTypeS}
	}
	key := func(n string, kt types.KeyType) types.KeySchemaElement {
		return types.KeySchemaElement{AttributeName: aws.String(n), KeyType: kt}
	}
	return &dynamodb.CreateTableInput{
		TableName:            aws.String(name),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{attr("id"), attr("userId"), attr("createdAt")},
		KeySchema:            []types.KeySchemaElement{key("id", types.KeyTypeHash)},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{{
			IndexName:  aws.String(UserIndex),
			KeySchema:  []types.KeySchemaElement{key("userId", types.KeyTypeHash), key("createdAt", types.KeyTypeRange)},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		}},
	}
}
