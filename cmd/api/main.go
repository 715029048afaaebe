package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vaughan-dsouza/userposts/internal/cache"
	"github.com/vaughan-dsouza/userposts/internal/config"
	"github.com/vaughan-dsouza/userposts/internal/db"
	"github.com/vaughan-dsouza/userposts/internal/handlers"
	"github.com/vaughan-dsouza/userposts/internal/logging"
	"github.com/vaughan-dsouza/userposts/internal/store"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	cfg, envFile, err := config.Load()
	if err != nil {
		logging.New("info").Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	if !envFile {
		logger.Info("No .env file found")
	}

	dbConn, err := db.Connect(cfg.DBDriver, cfg.DatabaseURL, cfg.Pool())
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}

	// Create tables on start; existing tables are left as they are.
	if err := db.EnsureSchema(context.Background(), dbConn); err != nil {
		logger.Fatalf("db schema: %v", err)
	}

	st := store.New(dbConn, logger)
	defer st.Close()

	var c cache.Cache = cache.Noop{}
	if cfg.CacheEnabled() {
		rc, err := cache.NewRedis(context.Background(), cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		}, logger)
		if err != nil {
			logger.Fatalf("cache: %v", err)
		}
		defer rc.Close()
		c = rc
		logger.WithField("addr", cfg.RedisAddr).Info("redis cache enabled")
	}

	h := handlers.NewHandler(c, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, st, logger),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.WithField("driver", cfg.DBDriver).Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}

	logger.WithField("open_sessions", st.Active()).Info("server exited")
}
