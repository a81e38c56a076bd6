package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tagsense/internal/api/router"
	"tagsense/internal/broadcast"
	"tagsense/internal/cache"
	"tagsense/internal/config"
	"tagsense/internal/core/geofence"
	"tagsense/internal/core/repository"
	"tagsense/internal/core/service"
	"tagsense/internal/notify"
	"tagsense/internal/protocol/localsense"
)

func main() {
	cfg := config.LoadConfig()

	// Tag registry: MongoDB when configured, in-memory otherwise.
	var tagRepo repository.TagRepository
	if cfg.MongoURI != "" {
		db, err := config.ConnectMongoDB(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Printf("MongoDB unavailable, using in-memory tag registry: %v", err)
			tagRepo = repository.NewInMemoryTagRepository()
		} else {
			tagRepo = repository.NewMongoTagRepository(db)
		}
	} else {
		tagRepo = repository.NewInMemoryTagRepository()
	}

	readCache := cache.New(cfg.RedisURL)
	defer readCache.Close()

	engine := geofence.NewEngine(cfg.Zones, cfg.RetriggerDuration(), nil)
	hub := broadcast.NewHub()
	notifier := notify.NewClient(cfg.AlarmHost, cfg.AlarmPort, cfg.SecretKey, cfg.WSHost, cfg.WSPort)
	tracking := service.NewTrackingService(engine, hub, notifier, tagRepo)

	client := localsense.NewClient(cfg.WSHost, cfg.WSPort, cfg.Username, cfg.Password, cfg.TargetTagID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runCollector(ctx, client, tracking)

	r := router.NewRouter(tracking, client, hub, notifier, readCache, cfg.APIToken, cfg.TargetTagID)
	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down")

	cancel()
	client.Disconnect()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// runCollector drives the LocalSense session: connect with retry,
// authenticate, then stream position frames into the tracking pipeline.
// Connection failure is not fatal; the HTTP API and dashboard keep serving
// whatever state was collected.
func runCollector(ctx context.Context, client *localsense.Client, tracking *service.TrackingService) {
	if err := client.ConnectWithRetry(ctx); err != nil {
		log.Printf("Could not reach LocalSense engine, position stream disabled: %v", err)
		return
	}

	if err := client.Authenticate(); err != nil {
		log.Printf("LocalSense authentication failed: %v", err)
		client.Disconnect()
		return
	}

	if err := client.Run(ctx, tracking.ProcessBatch); err != nil {
		log.Printf("Position stream stopped: %v", err)
	}
}
