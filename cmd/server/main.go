// Package main provides the entry point for the site gateway.
// It initializes all dependencies, wires the request gate in front of the
// page handlers, and starts the server with graceful shutdown support.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pixfil/yogapluriel-sub002/internal/config"
	"github.com/pixfil/yogapluriel-sub002/internal/database/postgres"
	"github.com/pixfil/yogapluriel-sub002/internal/gate"
	"github.com/pixfil/yogapluriel-sub002/internal/handlers"
	"github.com/pixfil/yogapluriel-sub002/internal/middleware"
	"github.com/pixfil/yogapluriel-sub002/internal/repository"
	"github.com/pixfil/yogapluriel-sub002/internal/session"
	"github.com/pixfil/yogapluriel-sub002/pkg/logger"
)

func main() {
	// Load .env.local file only in development (when GO_ENV is not set or set to "development")
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" || goEnv == "development" {
		if err := godotenv.Load(".env.local"); err != nil {
			// Only log if the error is not "file not found"
			if !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Warning: Error loading .env.local file: %v\n", err)
			}
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.Info("Starting site gateway")
	log.WithFields(logrus.Fields{
		"port": cfg.Server.Port,
		"host": cfg.Server.Host,
		"tls":  cfg.IsTLSEnabled(),
	}).Info("Service configuration loaded")

	// Initialize dependencies
	store, dbMgr := initializeStores(cfg, log)
	defer closeStore(store, log)
	defer closeDatabase(dbMgr, log)

	// Set up HTTP server
	server := setupServer(cfg, store, dbMgr, log)

	// Start and run server with graceful shutdown
	runServer(server, cfg, log)
}

// initializeStores brings up the database manager and the session store,
// falling back to the in-memory session store when Redis is unreachable.
func initializeStores(cfg *config.Config, log *logrus.Logger) (session.Store, *postgres.Manager) {
	dbMgr, dbErr := postgres.NewManager(cfg, log)
	if dbErr != nil {
		log.WithError(dbErr).Error("Failed to initialize database manager")
		dbMgr = nil
	}

	redisStore, err := session.NewClient(&cfg.Redis, log)
	if err != nil {
		log.WithError(err).Warn("Failed to connect to Redis, falling back to in-memory session store")
		log.Warn("Note: In-memory sessions will not persist between restarts")
		return session.NewMemoryStore(log), dbMgr
	}

	log.Info("Successfully connected to Redis session store")
	return redisStore, dbMgr
}

func closeStore(store session.Store, log *logrus.Logger) {
	if storeErr := store.Close(); storeErr != nil {
		log.WithError(storeErr).Error("Failed to close session store")
	}
}

func closeDatabase(dbMgr *postgres.Manager, log *logrus.Logger) {
	if dbMgr != nil {
		dbMgr.Close()
		log.Info("Database connections closed")
	}
}

func setupServer(
	cfg *config.Config,
	store session.Store,
	dbMgr *postgres.Manager,
	log *logrus.Logger,
) *http.Server {
	poolGetter := func() *pgxpool.Pool { return nil }
	if dbMgr != nil {
		poolGetter = dbMgr.Pool
	}

	// Gate collaborators
	profiles := repository.NewPostgresProfileRepository(poolGetter)
	redirects := repository.NewPostgresRedirectRepository(poolGetter)
	settings := repository.NewPostgresSettingsRepository(poolGetter)
	resolver := session.NewResolver(cfg.Session, store, log)

	// The gate itself
	requestGate := gate.New(cfg.Gate, resolver, profiles, settings, redirects, log)
	requestGate.Metrics().Register(prometheus.DefaultRegisterer)

	// Handlers
	healthHandler := handlers.NewHealthHandler(store, dbMgr, log)
	healthHandler.Metrics().Register(prometheus.DefaultRegisterer)
	pageHandler := handlers.NewPageHandler(settings, log)

	// Middleware stack; rate limiting only when Redis is available
	var redisClient *redis.Client
	if client, ok := store.(*session.Client); ok {
		redisClient = client.Redis()
	}
	middlewareStack := middleware.NewStack(cfg, redisClient, log)

	router := mux.NewRouter()

	// Probes and metrics bypass the gate entirely
	healthHandler.RegisterRoutes(router)
	router.Handle("/metrics", handlers.MetricsHandler()).Methods("GET")

	// Everything else runs through the gate pipeline
	pages := mux.NewRouter()
	pages.HandleFunc(cfg.Gate.MaintenancePath, pageHandler.Maintenance)
	pages.HandleFunc(cfg.Gate.AdminLoginPath, pageHandler.AdminLogin)
	pages.PathPrefix("/").HandlerFunc(pageHandler.Site)

	gated := middlewareStack.Chain(
		pages,
		middlewareStack.Recovery,
		middlewareStack.RequestLogger,
		middlewareStack.SecurityHeaders,
		middlewareStack.RateLimit,
		requestGate.Handler,
	)
	router.PathPrefix("/").Handler(gated)

	return &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func runServer(server *http.Server, cfg *config.Config, log *logrus.Logger) {
	// Start server in a goroutine
	go startServer(server, cfg, log)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Create context with timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.WithError(shutdownErr).Error("Server forced to shutdown")
	} else {
		log.Info("Server exited gracefully")
	}
}

func startServer(server *http.Server, cfg *config.Config, log *logrus.Logger) {
	log.WithFields(logrus.Fields{
		"addr": server.Addr,
		"tls":  cfg.IsTLSEnabled(),
	}).Info("Starting HTTP server")

	var startErr error
	if cfg.IsTLSEnabled() {
		startErr = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
	} else {
		startErr = server.ListenAndServe()
	}

	if startErr != nil && startErr != http.ErrServerClosed {
		log.WithError(startErr).Fatal("Failed to start server")
	}
}
