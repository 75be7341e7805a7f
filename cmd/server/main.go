package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"creator-performance-ledger/internal/config"
	"creator-performance-ledger/internal/repository"
	"creator-performance-ledger/internal/routes"
	"creator-performance-ledger/internal/services/columns"
	"creator-performance-ledger/internal/services/notify"
	"creator-performance-ledger/internal/services/reset"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("database unavailable")
	}

	keywords := columns.DefaultKeywords()
	if cfg.ColumnKeywordsFile != "" {
		if keywords, err = columns.LoadKeywords(cfg.ColumnKeywordsFile); err != nil {
			logger.WithError(err).Fatal("load column keywords")
		}
	}

	var (
		notifier notify.Notifier = notify.Nop{}
		locker   reset.Locker
	)
	if cfg.RedisAddress != "" {
		rdb, lockClient, err := config.ConnectRedis(ctx, cfg)
		if err != nil {
			logger.WithError(err).Fatal("redis unavailable")
		}
		defer rdb.Close()
		locker = reset.NewRedisLocker(lockClient)
		if cfg.StatsNotifier == "redis" {
			notifier = notify.NewRedis(rdb, notify.DefaultChannel)
		}
	}
	if cfg.StatsNotifier == "outbox" {
		notifier = notify.NewOutbox(repository.NewStatsEventRepository(db))
	}

	scheduler := reset.NewScheduler(
		repository.NewBalanceRepository(db),
		locker,
		cfg.ResetLocation,
		cfg.ResetInterval,
		logger.WithField("module", "reset"),
	)
	go scheduler.Run(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-ID", "X-User-Role"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, routes.Deps{
		Config:    cfg,
		Log:       logger,
		Notifier:  notifier,
		Keywords:  keywords,
		Scheduler: scheduler,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.WithError(err).Fatal("listen")
	}
	logger.WithField("port", cfg.ServerPort).Info("server starting")
	if err := serve(ctx, srv, ln, shutdownTimeout, logger); err != nil {
		logger.WithError(err).Error("server stopped")
	}
	stop()
	logger.Info("server exited")
}

// serve runs srv on ln until it fails or ctx is done, then drains in-flight
// requests for at most timeout.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, log logrus.FieldLogger) error {
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-serverErrCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
