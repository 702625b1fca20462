package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artist-analytics/api"
	"github.com/artist-analytics/app"
	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/env"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/mongoclient"
	"github.com/artist-analytics/musicclient"
	"github.com/artist-analytics/sqlclient"
)

const memoryCacheSize = 10000
const shutdownTimeout = 15 * time.Second

func buildCache(config *env.Config) (*cache.Cache, error) {
	if config.CacheDriver == env.CacheRedis {
		store, err := cache.NewRedisStore(config.RedisUrl)

		if err != nil {
			return nil, err
		}

		return cache.New(store), nil
	}

	store, err := cache.NewMemoryStore(memoryCacheSize)

	if err != nil {
		return nil, err
	}

	return cache.New(store), nil
}

// buildStore returns the configured persistence and the function releasing it
func buildStore(ctx context.Context, config *env.Config) (app.Store, func(), error) {
	switch config.StoreDriver {
	case env.StorePostgres, env.StoreSqlite:
		store, err := sqlclient.Open(config.StoreDriver, config.DatabaseUrl)

		if err != nil {
			return nil, nil, err
		}

		return store, func() { _ = store.Close() }, nil

	default:
		store, err := mongoclient.Connect(ctx, config.MongoUrl, config.MongoDatabase)

		if err != nil {
			return nil, nil, err
		}

		return store, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = store.Close(closeCtx)
		}, nil
	}
}

func startServer(config *env.Config, orchestrator *app.Orchestrator) *http.Server {
	server := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           api.NewRouter(orchestrator, api.RouterConfig{AllowedOrigins: config.AllowedOrigins}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Infof("Server listening on %s", server.Addr)

		err := server.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Failed to start server ", err)
		}
	}()

	return server
}

func main() {
	config, err := env.Load()

	if err != nil {
		logger.Logger.Fatal("Invalid configuration ", err)
	}

	logger.Configure(env.IsProd(), config.LogLevel)

	datadog.Initialise(config.StatsdAddr)

	if config.TracingEnabled {
		datadog.StartTracer(env.GetEnv())
	}

	ctx := context.Background()

	appCache, err := buildCache(config)

	if err != nil {
		logger.Logger.Fatal("Failed to build cache ", err)
	}

	store, closeStore, err := buildStore(ctx, config)

	if err != nil {
		logger.Logger.Fatal("Failed to connect to the store ", err)
	}

	clients, err := musicclient.NewClients(ctx, config, appCache)

	if err != nil {
		logger.Logger.Fatal("Failed to build music clients ", err)
	}

	orchestrator := app.NewOrchestrator(app.Dependencies{
		Spotify:     clients.Spotify,
		Youtube:     clients.Youtube,
		LastFm:      clients.LastFm,
		MusicBrainz: clients.MusicBrainz,
		Viberate:    clients.Viberate,
		Biography:   clients.Generative,
		Store:       store,
		Cache:       appCache,
	}, app.Options{MaxDepth: config.SimilarMaxDepth})

	server := startServer(config, orchestrator)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Failed to shut down the server gracefully ", err)
	}

	closeStore()

	if err := appCache.Close(); err != nil {
		logger.Logger.Error("Failed to close the cache ", err)
	}

	datadog.Stop()
}
