// Package docstore selects the document store backend sign-ups are written to.
package docstore

import (
	"fmt"

	"github.com/go-signup-recorder/internal/application/signup"
	"github.com/go-signup-recorder/internal/config"
	"github.com/go-signup-recorder/internal/infrastructure/cosmos"
	"github.com/go-signup-recorder/internal/infrastructure/dynamo"
	"github.com/go-signup-recorder/internal/infrastructure/mongo"
)

// Connector returns the connector for cfg.Store.Backend.
func Connector(cfg *config.Config) (signup.Connector, error) {
	switch cfg.Store.Backend {
	case config.BackendCosmos:
		return cosmos.Connector(cfg.Store.PartitionKey), nil
	case config.BackendDynamo:
		return dynamo.Connector(dynamo.Options{
			Region:    cfg.AWSRegion,
			Bootstrap: cfg.DynamoBootstrap,
		}), nil
	case config.BackendMongo:
		return mongo.Connector(cfg.MongoConnectTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

// Options builds recorder options from cfg.
func Options(cfg *config.Config) signup.Options {
	return signup.Options{
		Endpoint:              cfg.Store.Endpoint,
		Credential:            cfg.StoreCredential(),
		DatabaseName:          cfg.Store.Database,
		ContainerName:         cfg.Store.Container,
		EnableMessageFeedback: cfg.Store.EnableMessageFeedback,
	}
}
