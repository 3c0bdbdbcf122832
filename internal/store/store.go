package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/msb418/it-asset-tracker/internal/config"
	"github.com/msb418/it-asset-tracker/internal/domain/repositories"
	"github.com/msb418/it-asset-tracker/internal/repository/memory"
	"github.com/msb418/it-asset-tracker/internal/repository/mongodb"
	"github.com/msb418/it-asset-tracker/internal/repository/postgres"
)

// Store is an opened asset backend with the hooks the binaries need.
type Store struct {
	Backend string
	Assets  repositories.AssetRepository
	Tx      repositories.TransactionManager

	ping  func(ctx context.Context) error
	drop  func(ctx context.Context) error
	setup func(ctx context.Context) error
	close func()
}

// Open connects to the backend named by cfg.StoreBackend. The schema or
// indexes are not touched; call EnsureSchema for that.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		repoConfig := &mongodb.RepositoryConfig{
			Database:    client.Database(cfg.MongoDatabase),
			Collections: mongodb.NewCollectionNames(cfg.TablePrefix),
			Logger:      logger,
		}
		logger.Info("mongo connected", "database", cfg.MongoDatabase, "collection", repoConfig.Collections.Assets)
		return &Store{
			Backend: cfg.StoreBackend,
			Assets:  mongodb.NewAssetRepository(repoConfig),
			Tx:      repositories.NoTransactions{},
			ping:    func(ctx context.Context) error { return client.Ping(ctx, nil) },
			drop:    func(ctx context.Context) error { return mongodb.DropCollections(ctx, repoConfig) },
			setup:   func(ctx context.Context) error { return mongodb.EnsureIndexes(ctx, repoConfig) },
			close:   func() { mongodb.Disconnect(client, logger) },
		}, nil

	case config.BackendPostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		logger.Info("database connected", "table", repoConfig.Tables.Assets)
		return &Store{
			Backend: cfg.StoreBackend,
			Assets:  postgres.NewAssetRepository(repoConfig),
			Tx:      postgres.NewTransactionManager(pool, logger),
			ping:    pool.Ping,
			drop:    func(ctx context.Context) error { return postgres.DropTables(ctx, repoConfig) },
			setup:   func(ctx context.Context) error { return postgres.EnsureSchema(ctx, repoConfig) },
			close:   pool.Close,
		}, nil

	case config.BackendMemory:
		logger.Warn("using in-memory store: data is lost on restart")
		return &Store{
			Backend: cfg.StoreBackend,
			Assets:  memory.NewAssetRepository(logger),
			Tx:      repositories.NoTransactions{},
		}, nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// EnsureSchema creates tables or indexes if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.setup == nil {
		return nil
	}
	return s.setup(ctx)
}

// Drop removes the asset table or collection.
func (s *Store) Drop(ctx context.Context) error {
	if s.drop == nil {
		return nil
	}
	return s.drop(ctx)
}

// Ping checks the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// ClearOwner removes every asset of owner.
func (s *Store) ClearOwner(ctx context.Context, owner string) (int64, error) {
	c, ok := s.Assets.(repositories.OwnerClearer)
	if !ok {
		return 0, fmt.Errorf("%s store cannot clear assets", s.Backend)
	}
	return c.Clear(ctx, owner)
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}
