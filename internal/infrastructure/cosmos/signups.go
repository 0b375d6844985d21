package cosmos

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/go-signup-recorder/internal/domain"
)

// SignUpRepo writes sign-up documents to one container.
type SignUpRepo struct {
	endpoint     string
	database     *azcosmos.DatabaseClient
	container    *azcosmos.ContainerClient
	partitionKey []string
}

func (r *SignUpRepo) Name() string { return BackendName }

// Endpoint is the account endpoint, taken from the connection string when
// one was used.
func (r *SignUpRepo) Endpoint() string { return r.endpoint }

func (r *SignUpRepo) ReadDatabase(ctx context.Context) error {
	_, err := r.database.Read(ctx, nil)
	return err
}

func (r *SignUpRepo) ReadContainer(ctx context.Context) error {
	_, err := r.container.Read(ctx, nil)
	return err
}

func (r *SignUpRepo) Upsert(ctx context.Context, rec *domain.SignUp) (domain.Document, error) {
	item, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal sign-up: %w", err)
	}
	pk, err := partitionKeyValue(item, r.partitionKey)
	if err != nil {
		return nil, err
	}
	resp, err := r.container.UpsertItem(ctx, pk, item, &azcosmos.ItemOptions{
		EnableContentResponseOnWrite: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeDocument(resp.Value)
}

// partitionKeyValue reads the partition key from the serialized item so the
// path names JSON properties, the same way the container definition does.
func partitionKeyValue(item []byte, path []string) (azcosmos.PartitionKey, error) {
	var v any
	if err := json.Unmarshal(item, &v); err != nil {
		return azcosmos.PartitionKey{}, fmt.Errorf("read partition key: %w", err)
	}
	for _, name := range path {
		obj, ok := v.(map[string]any)
		if !ok {
			return azcosmos.PartitionKey{}, fmt.Errorf("partition key /%s not found on sign-up", strings.Join(path, "/"))
		}
		if v, ok = obj[name]; !ok {
			return azcosmos.PartitionKey{}, fmt.Errorf("partition key /%s not found on sign-up", strings.Join(path, "/"))
		}
	}
	switch pk := v.(type) {
	case string:
		return azcosmos.NewPartitionKeyString(pk), nil
	case bool:
		return azcosmos.NewPartitionKeyBool(pk), nil
	case float64:
		return azcosmos.NewPartitionKeyNumber(pk), nil
	case nil:
		return azcosmos.NullPartitionKey, nil
	default:
		return azcosmos.PartitionKey{}, fmt.Errorf("partition key /%s is not a scalar", strings.Join(path, "/"))
	}
}

// decodeDocument turns a response body into a Document; an empty body
// yields nil.
func decodeDocument(body []byte) (domain.Document, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var doc domain.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode upsert response: %w", err)
	}
	return doc, nil
}
