package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"blog-api/config"
	"blog-api/db"
	"blog-api/middlewares"
	"blog-api/routes"
	"blog-api/services"
	"blog-api/store"
	"blog-api/utils"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Error loading config: %v", err)
	}

	log, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("Error creating logger: %v", err)
	}

	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Error opening store")
	}
	defer closeStore()

	svc := services.NewPostService(st, log)

	stopCleanup := make(chan struct{})
	var limiter *middlewares.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log, cfg.TrustedProxies...)
		limiter.StartCleanup(time.Minute, stopCleanup)
	}

	// Set up routes and middlewares
	handler := routes.SetupRoutes(routes.Options{
		Service:     svc,
		Log:         log,
		Metrics:     middlewares.NewMetrics(services.Collectors()...),
		Cors:        middlewares.DefaultCorsConfig(cfg.AllowedOrigins),
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        handler,
		ReadTimeout:    100 * time.Second,
		WriteTimeout:   100 * time.Second,
		MaxHeaderBytes: 7500,
		IdleTimeout:    120 * time.Second,
	}

	// Use a wait group to manage graceful shutdown
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("ListenAndServe error")
		}
	}()
	log.WithFields(logrus.Fields{"addr": srv.Addr, "store": cfg.Store}).Info("Server started")

	// Wait for interrupt signal to gracefully shut down the server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	close(stopCleanup)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}

	wg.Wait()
	log.Info("Server exited gracefully")
}

// openStore builds the post store selected by cfg and a func releasing it.
func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.Store, func(), error) {
	var (
		st      store.Store
		conn    *sql.DB
		rclient *redis.Client
	)

	closeAll := func() {
		if rclient != nil {
			_ = rclient.Close()
		}
		if conn != nil {
			_ = conn.Close()
		}
	}

	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("Using in-memory store; posts are lost on restart")
		st = store.NewMemoryStore()
	default:
		var err error
		conn, err = db.Open(ctx, cfg.DBDriver, cfg.DBURL, log)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx, conn, log); err != nil {
			closeAll()
			return nil, nil, err
		}
		st = store.NewPostgresStore(conn)
	}

	if cfg.RedisURL != "" {
		var err error
		rclient, err = db.NewRedisClient(ctx, db.DefaultRedisConfig(cfg.RedisURL))
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		log.Info("Redis cache enabled")
		st = store.NewCachedStore(st, rclient, log)
	}

	return st, closeAll, nil
}
