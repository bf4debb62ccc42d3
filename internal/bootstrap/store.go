package bootstrap

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skyon-community/skyon-backend/config"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/registry"
)

// OpenStore builds the document store client on the configured backend.
func OpenStore(ctx context.Context, cfg *config.Config, fb *firebase.App, rdb *redis.Client, log *zap.Logger) (*docstore.Client, error) {
	var backend docstore.Backend
	switch cfg.Store.Backend {
	case config.StoreFirebase:
		if fb == nil {
			return nil, fmt.Errorf("firebase store: no Firebase app")
		}
		dbc, err := fb.Database(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get Database client: %w", err)
		}
		backend = docstore.NewFirebaseBackend(dbc)
	case config.StoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis store: REDIS_ADDR is not set")
		}
		backend = docstore.NewRedisBackend(rdb)
	case config.StoreMemory:
		log.Warn("using the in-memory document store; records are lost on restart")
		backend = docstore.NewMemoryBackend()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return docstore.NewClient(backend,
		docstore.WithOwnerFields(registry.OwnerFields()),
		docstore.WithTimeout(cfg.Store.Timeout),
		docstore.WithLogger(log),
	), nil
}
