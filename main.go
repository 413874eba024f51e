package main

import (
	"context"
	"errors"
	"music-api-go/config"
	"music-api-go/favorites"
	"music-api-go/logcolors"
	"music-api-go/middleware"
	"music-api-go/services/kugou"
	"music-api-go/storage"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const memoryDBPath = ":memory:"

var conf = config.Get()

var (
	musicClient    *kugou.Client
	favoritesStore *favorites.Store
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(conf.Configuration.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// newMusicClient builds the upstream client from configuration
func newMusicClient(cfg config.Config) *kugou.Client {
	return kugou.NewClient(kugou.Options{
		BaseURL:           cfg.Configuration.UpstreamBaseURL,
		HTTPClient:        &http.Client{Timeout: time.Duration(cfg.Configuration.UpstreamTimeoutSeconds) * time.Second},
		DetailResultCount: cfg.Configuration.DetailResultCount,
		DefaultCoverPath:  cfg.Configuration.DefaultCoverPath,
	})
}

// openBackend opens the configured favorites backend
func openBackend(cfg config.Config) (storage.Backend, error) {
	if cfg.Configuration.FavoritesDBPath == memoryDBPath {
		log.Warnf("%s Using in-memory favorites, nothing will be persisted", logcolors.LogStorageInit)
		return storage.NewMemoryBackend(), nil
	}
	return storage.NewBoltBackend(
		cfg.Configuration.FavoritesDBPath,
		cfg.Configuration.FavoritesBackupPath,
		cfg.FeatureFlags.FavoritesCompression,
	)
}

// buildHandler wraps the router with logging, CORS, API key and rate limiting
func buildHandler(cfg config.Config) http.Handler {
	router := mux.NewRouter()
	setupRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodHead},
		AllowedHeaders: []string{"Content-Type", "X-API-Key", "X-Request-ID"},
	})

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.Configuration.RateLimitPerSecond), cfg.Configuration.RateLimitBurstLimit)
	apiKey := middleware.APIKeyMiddleware(cfg.Configuration.APIKey, cfg.Configuration.APIKeyRequired, adminPaths)

	handler := limiter.Middleware(apiKey(router))
	handler = c.Handler(handler)
	return middleware.LoggingMiddleware(handler)
}

func main() {
	backend, err := openBackend(conf)
	if err != nil {
		log.Fatalf("%s Failed to open favorites storage: %v", logcolors.LogStorageInit, err)
	}
	defer backend.Close()

	musicClient = newMusicClient(conf)
	favoritesStore = favorites.NewStore(backend)

	srv := &http.Server{
		Addr:              ":" + conf.Configuration.Port,
		Handler:           buildHandler(conf),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("%s Server listening on port %s", logcolors.LogServer, conf.Configuration.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("%s Server failed: %v", logcolors.LogServer, err)
		}
	}()

	<-ctx.Done()
	log.Infof("%s Shutting down", logcolors.LogServer)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s Graceful shutdown failed: %v", logcolors.LogServer, err)
	}
}
