package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/peers"
	"github.com/shuliakovsky/proxy-sync/pkg/secrets"
)

func initStore(ctx context.Context, cfg config, logger *zap.Logger) (peers.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case "mongo":
		logger.Info("store_mongo", zap.String("uri", secrets.RedactURL(cfg.MongoURI)), zap.String("database", cfg.MongoDatabase))
		return peers.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		logger.Info("store_sqlite", zap.String("path", cfg.SQLitePath))
		return peers.NewSQLiteStore(ctx, cfg.SQLitePath)
	case "memory":
		logger.Warn("store_memory", zap.String("note", "peers are lost on restart"))
		return peers.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (mongo|sqlite|memory)", cfg.StoreDriver)
	}
}
