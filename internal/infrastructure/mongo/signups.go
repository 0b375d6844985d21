package mongo

import (
	"context"
	"fmt"

	"github.com/go-signup-recorder/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// signUpDoc keys the document by the sign-up id so ReplaceOne upserts by id.
type signUpDoc struct {
	MongoID       string `bson:"_id"`
	domain.SignUp `bson:",inline"`
}

// SignUpRepo writes sign-up documents to one collection.
type SignUpRepo struct {
	endpoint   string
	client     *mongo.Client
	db         *mongo.Database
	collection string
}

func NewSignUpRepo(client *mongo.Client, db *mongo.Database, collection string) *SignUpRepo {
	return &SignUpRepo{client: client, db: db, collection: collection}
}

func (r *SignUpRepo) Name() string { return BackendName }

// Endpoint is the dialed URI without credentials.
func (r *SignUpRepo) Endpoint() string { return r.endpoint }

func (r *SignUpRepo) ReadDatabase(ctx context.Context) error {
	names, err := r.client.ListDatabaseNames(ctx, bson.D{{Key: "name", Value: r.db.Name()}})
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("database %s: %w", r.db.Name(), domain.ErrNotFound)
	}
	return nil
}

func (r *SignUpRepo) ReadContainer(ctx context.Context) error {
	names, err := r.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: r.collection}})
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("collection %s: %w", r.collection, domain.ErrNotFound)
	}
	return nil
}

// Upsert replaces the document with rec's id, inserting it when absent.
// An unacknowledged write yields a nil document.
func (r *SignUpRepo) Upsert(ctx context.Context, rec *domain.SignUp) (domain.Document, error) {
	doc := signUpDoc{MongoID: rec.ID, SignUp: *rec}
	res, err := r.db.Collection(r.collection).ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: rec.ID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}
	if !res.Acknowledged {
		return nil, nil
	}
	return toDocument(doc)
}

// toDocument round-trips through BSON so the result matches what the server stored.
func toDocument(doc signUpDoc) (domain.Document, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal sign-up: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal sign-up: %w", err)
	}
	return domain.Document(m), nil
}

// Close disconnects the client.
func (r *SignUpRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
