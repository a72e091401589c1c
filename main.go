package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"findash_backend/config"
	"findash_backend/routes"
	"findash_backend/scheduler"
	"findash_backend/services"
	"findash_backend/services/marketdata"
)

// storeReady tracks whether the bar store has been successfully initialized,
// shared with the /ready endpoint across goroutines.
var storeReady bool
var storeReadyMu sync.RWMutex

func main() {
	log.Println("==============================================")
	log.Println("  Financial Dashboard Backend - Starting...")
	log.Println("==============================================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Config load issue: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	// Health endpoints go up first so the platform can see the service
	// before the store is connected.
	setupHealthEndpoints(router)

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on 0.0.0.0:%s", cfg.Port)
		log.Println("==============================================")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Initialize the store, services and routes in the background.
	var store services.BarStore
	var jobScheduler *scheduler.Scheduler
	go func() {
		store, err = openStore(cfg)
		if err != nil {
			log.Printf("ERROR: Store initialization failed: %v", err)
			log.Println("Service will continue in limited mode (health check only)")
			return
		}

		storeReadyMu.Lock()
		storeReady = true
		storeReadyMu.Unlock()

		source := marketdata.NewYahooSource()
		syncSvc := services.NewSyncService(store, source, services.SyncConfig{
			Epoch:          cfg.SyncEpoch,
			FullWindowDays: cfg.FullWindowDays,
		})
		metricsSvc := services.NewMetricsService(store, cfg.Symbols, cfg.MetricsWindow)

		routes.SetupRoutes(router, cfg, store, syncSvc, metricsSvc)

		jobScheduler = scheduler.NewScheduler(syncSvc, cfg.Symbols)
		jobScheduler.Start()

		log.Println("Application fully initialized")
	}()

	gracefulShutdown(server, &store, &jobScheduler)
}

// openStore creates the configured bar store backend.
func openStore(cfg *config.Config) (services.BarStore, error) {
	if cfg.StoreBackend == "mongo" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return services.NewMongoBarStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}
	return services.NewSQLiteBarStore(cfg.SQLitePath)
}

// setupHealthEndpoints sets up liveness and readiness probes.
func setupHealthEndpoints(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Financial Dashboard Backend",
			"version": "1.0.0",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		storeReadyMu.RLock()
		ready := storeReady
		storeReadyMu.RUnlock()

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"message": "Store not connected",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}

// requestLogger logs failed or slow requests, skipping health probes.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/ready" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		if c.Writer.Status() >= 400 || duration > 1*time.Second {
			log.Printf("%s %s %d %v", c.Request.Method, path, c.Writer.Status(), duration)
		}
	}
}

// gracefulShutdown stops the scheduler, the HTTP server and the store on
// SIGINT/SIGTERM.
func gracefulShutdown(server *http.Server, store *services.BarStore, jobScheduler **scheduler.Scheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("Received signal %v, shutting down gracefully...", sig)

	if *jobScheduler != nil {
		(*jobScheduler).Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if *store != nil {
		if err := (*store).Close(ctx); err != nil {
			log.Printf("Error closing store: %v", err)
		} else {
			log.Println("Store connection closed")
		}
	}

	log.Println("Server shutdown completed")
}
