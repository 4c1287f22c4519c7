package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"lead-bridge/internal/common/logging"
	"lead-bridge/internal/config"
	"lead-bridge/internal/crm"
	"lead-bridge/internal/handlers"
	"lead-bridge/internal/middleware"
	"lead-bridge/internal/oauth"
	"lead-bridge/internal/pipeline"
	"lead-bridge/internal/storage/sqlite"
	"lead-bridge/internal/tenant"
	"lead-bridge/internal/token"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.NewZapLogger(logging.ParseLevel(cfg.LogLevel), nil)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logging.SetGlobalLogger(logger)
	defer logging.MustSync()

	store, cleanup, err := newTokenStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize token store: %v", err)
	}
	defer cleanup()

	oauthClient := oauth.NewClient(oauth.Config{
		BaseURL:      cfg.PipeURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		Timeout:      cfg.HTTPTimeout,
	})

	crmClient := crm.NewClient(cfg.PipeURL, cfg.HTTPTimeout)
	resolver := tenant.NewResolver()
	pipe := pipeline.New(resolver, store, crmClient, pipeline.NewOwnerAssigner())

	scheduler := token.NewScheduler(store, oauthClient, cfg.RefreshInterval)
	scheduler.Start()
	defer scheduler.Stop()

	h := handlers.New(cfg, oauthClient, store, pipe)

	router := mux.NewRouter()
	router.HandleFunc("/v1/authorize", h.Authorize).Methods("GET")
	router.HandleFunc("/v1/auth", h.Auth).Methods("GET")
	router.HandleFunc("/v1/integra", h.Integra).Methods("POST")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.LoggingMiddleware(router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logging.Info("Server starting", logging.Field{Key: "port", Value: cfg.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logging.Info("Server exited")
}

// newTokenStore builds the configured token store backend and returns a
// cleanup function for backends holding connections.
func newTokenStore(cfg *config.Config) (token.Store, func(), error) {
	noop := func() {}

	switch cfg.TokenStore {
	case "file":
		return token.NewFileStore(cfg.TokenFile), noop, nil

	case "memory":
		return token.NewMemoryStore(), noop, nil

	case "sqlite":
		adapter, err := sqlite.NewAdapter(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return token.NewDBStore(adapter), func() { adapter.Close() }, nil

	case "redis":
		db, _ := strconv.Atoi(cfg.RedisDB)
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       db,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, nil, err
		}
		return token.NewRedisStore(client), func() { client.Close() }, nil
	}

	return token.NewFileStore(cfg.TokenFile), noop, nil
}
