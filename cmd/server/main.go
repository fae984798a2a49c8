package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	webAdapter "hr-assistant/internal/adapters/web"
	"hr-assistant/internal/ai"
	"hr-assistant/internal/app"
	"hr-assistant/internal/config"
	"hr-assistant/internal/core"
	"hr-assistant/internal/db"
	"hr-assistant/internal/memory"
	"hr-assistant/internal/observability"
	"hr-assistant/internal/policy"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		pool      *pgxpool.Pool
		store     core.RecordStore
		retriever policy.Retriever
	)
	if cfg.App.UserSeedFile != "" {
		seeded, err := core.LoadSeedFile(cfg.App.UserSeedFile)
		if err != nil {
			logger.Fatal("load user seed", zap.Error(err))
		}
		store = seeded
		logger.Info("using seeded user records", zap.String("file", cfg.App.UserSeedFile))
	}
	if cfg.Postgres.DSN != "" {
		pool, err = db.NewPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		if store == nil {
			store = core.NewPostgresStore(pool)
		}
		retriever = policy.NewPostgresRetriever(pool, cfg.Policy.TopK)
	}

	client := ai.NewClient(cfg.OpenAI)
	classifier, err := ai.NewOpenAIClassifier(client, cfg.OpenAI.RouterModel)
	if err != nil {
		logger.Fatal("classifier", zap.Error(err))
	}
	router := ai.NewRouter(classifier, cfg.OpenAI.RouterTimeout(), logger)
	dispatcher := core.NewDispatcher(core.NewRecords(store), router, logger)
	agent := ai.NewAgent(client, cfg.OpenAI, logger)

	rdb := memory.NewRedis(cfg.Redis, logger)
	defer rdb.Close()
	history := memory.NewRedisHistory(rdb.Client, cfg.Redis.HistoryWindow)

	svc := app.NewAppService(dispatcher, agent, history, retriever, cfg.App.MaxMessageChars, logger)

	srv := &http.Server{
		Addr:              cfg.App.Addr(),
		Handler:           webAdapter.NewHandler(svc, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
	logger.Info("server stopped")
}
