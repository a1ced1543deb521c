package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketing-console/internal/activitylog"
	"marketing-console/internal/analytics"
	"marketing-console/internal/config"
	"marketing-console/internal/dashboard"
	"marketing-console/internal/docstore"
	"marketing-console/internal/events"
	"marketing-console/internal/submissions"
	"marketing-console/pkg/logger"
	"marketing-console/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional local env file; real deployments inject env directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	store := docstore.NewPostgres(db, rdb, log)

	// One sink for the whole process, injected everywhere it is needed.
	sink := activitylog.NewSink(store, log)

	projection := dashboard.NewProjection(store, log,
		analytics.LastNDays(time.Now(), cfg.Admin.WindowDays))
	if err := projection.Start(rootCtx); err != nil {
		log.Error("dashboard projection start failed", "err", err)
		os.Exit(1)
	}
	defer projection.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, cfg, routeDeps{
		events:      events.NewService(store),
		submissions: submissions.NewService(store),
		dashboard:   projection,
		sink:        sink,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("console api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	sink.Info(activitylog.CategorySystem, "startup", "console api started")

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	// Give queued activity-log entries a chance to land before exit.
	if err := sink.Flush(shutdownCtx); err != nil {
		log.Warn("activity log flush incomplete", "err", err)
	}
}
