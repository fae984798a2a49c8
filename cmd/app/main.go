package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"hr-assistant/internal/adapters/cli"
	"hr-assistant/internal/adapters/repl"
	"hr-assistant/internal/ai"
	"hr-assistant/internal/app"
	"hr-assistant/internal/config"
	"hr-assistant/internal/core"
	"hr-assistant/internal/db"
	"hr-assistant/internal/memory"
	"hr-assistant/internal/observability"
	"hr-assistant/internal/policy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// Keep stdout for answers.
	cfg.Logger.Output = "stderr"
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Logger.Level = "warn"
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set")
	}

	svc, cleanup, err := buildService(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer cleanup()

	if len(os.Args) > 1 {
		opts := cli.Options{JWTSecret: cfg.Auth.JWTSecret, TokenTTL: cfg.Auth.AccessTokenTTL()}
		if err := cli.Run(ctx, svc, opts, os.Args[1:], os.Stdout); err != nil {
			if errors.Is(err, cli.ErrUsage) {
				fmt.Fprintln(os.Stderr, err)
				cleanup()
				os.Exit(2)
			}
			cleanup()
			log.Fatalf("%s: %v", os.Args[1], err)
		}
		return
	}

	repl.Run(ctx, svc, cfg.App.DefaultUserID, bufio.NewReader(os.Stdin), os.Stdout)
}

// buildService wires the application from cfg. A seed file replaces the users
// table; without Redis the session keeps history in memory.
func buildService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (app.ApplicationService, func(), error) {
	var (
		closers   []func()
		store     core.RecordStore
		retriever policy.Retriever
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		closers = nil
	}

	if cfg.App.UserSeedFile != "" {
		seeded, err := core.LoadSeedFile(cfg.App.UserSeedFile)
		if err != nil {
			return nil, cleanup, err
		}
		store = seeded
	}
	if cfg.Postgres.DSN != "" {
		pool, err := db.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, pool.Close)
		if store == nil {
			store = core.NewPostgresStore(pool)
		}
		retriever = policy.NewPostgresRetriever(pool, cfg.Policy.TopK)
	}
	if store == nil {
		return nil, cleanup, errors.New("DATABASE_URL or USER_SEED_FILE must be set")
	}

	client := ai.NewClient(cfg.OpenAI)
	classifier, err := ai.NewOpenAIClassifier(client, cfg.OpenAI.RouterModel)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	router := ai.NewRouter(classifier, cfg.OpenAI.RouterTimeout(), logger)
	dispatcher := core.NewDispatcher(core.NewRecords(store), router, logger)
	agent := ai.NewAgent(client, cfg.OpenAI, logger)

	var history memory.History
	rdb := memory.NewRedis(cfg.Redis, logger)
	if err := rdb.Ping(ctx); err != nil {
		rdb.Close()
		history = memory.NewLocalHistory(cfg.Redis.HistoryWindow)
	} else {
		closers = append(closers, rdb.Close)
		history = memory.NewRedisHistory(rdb.Client, cfg.Redis.HistoryWindow)
	}

	svc := app.NewAppService(dispatcher, agent, history, retriever, cfg.App.MaxMessageChars, logger)
	return svc, cleanup, nil
}
