// seed loads users and company policy documents into the database. Users come
// from a YAML seed file and are upserted by id; each policy file replaces the
// passages previously stored under its name.
//
// Usage: go run ./cmd/seed -users seeds/users.yaml -policies seeds/policies
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"hr-assistant/internal/config"
	"hr-assistant/internal/core"
	"hr-assistant/internal/db"
	"hr-assistant/internal/observability"
	"hr-assistant/internal/policy"
)

func main() {
	usersFile := flag.String("users", "seeds/users.yaml", "YAML user seed file, empty to skip")
	policyDir := flag.String("policies", "seeds/policies", "directory of .md/.txt policy documents, empty to skip")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if *usersFile != "" {
		store, err := core.LoadSeedFile(*usersFile)
		if err != nil {
			logger.Fatal("load users", zap.Error(err))
		}
		recs := store.All()
		if err := core.SaveRecords(ctx, pool, recs); err != nil {
			logger.Fatal("save users", zap.Error(err))
		}
		logger.Info("users restored", zap.String("file", *usersFile), zap.Int("count", len(recs)))
	}

	if *policyDir != "" {
		n, err := policy.LoadDir(ctx, pool, *policyDir, logger)
		if err != nil {
			logger.Fatal("index policies", zap.Error(err))
		}
		logger.Info("policies indexed", zap.String("dir", *policyDir), zap.Int("passages", n))
	}
}
