package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Database    *mongo.Database
	Collections *CollectionNames
	Logger      *slog.Logger
}

// CollectionNames holds dynamically prefixed collection names
type CollectionNames struct {
	Assets string
}

// NewCollectionNames creates collection names with the given prefix
func NewCollectionNames(prefix string) *CollectionNames {
	return &CollectionNames{
		Assets: fmt.Sprintf("%sassets", prefix),
	}
}

// Connect opens a client and verifies it with a ping against the primary.
// The client is owned by the caller, who must Disconnect it on shutdown.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("MONGODB_URI is required for the mongo store")
	}

	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(20 * time.Second).
		SetServerSelectionTimeout(15 * time.Second).
		SetMaxPoolSize(50)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("create mongo client: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	defer cancelPing()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}

// Disconnect closes the client, bounded by a short timeout.
func Disconnect(client *mongo.Client, logger *slog.Logger) {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Warn("mongo disconnect failed", "error", err)
	}
}

// EnsureIndexes creates the owner and deletion-state indexes plus the unique
// asset tag index. The tag index is sparse so legacy documents without a tag
// do not collide.
func EnsureIndexes(ctx context.Context, cfg *RepositoryConfig) error {
	coll := cfg.Database.Collection(cfg.Collections.Assets)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdByEmail", Value: 1}}},
		{Keys: bson.D{{Key: "deletedAt", Value: 1}}},
		{
			Keys:    bson.D{{Key: "assetTag", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("assetTag_unique"),
		},
	}

	names, err := coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create indexes on %s: %w", cfg.Collections.Assets, err)
	}
	cfg.Logger.Info("mongo indexes ensured", "collection", cfg.Collections.Assets, "indexes", names)
	return nil
}

// DropCollections removes the asset collection entirely.
func DropCollections(ctx context.Context, cfg *RepositoryConfig) error {
	if err := cfg.Database.Collection(cfg.Collections.Assets).Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", cfg.Collections.Assets, err)
	}
	return nil
}
