package main

import (
	"context"
	"log"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/bootstrap"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/config"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/server"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/tracer"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	if container.NatsSubscriber != nil {
		defer container.NatsSubscriber.Close()
	}
	defer container.Logger.Sync()

	// 4. Start Background Services
	go func() {
		log.Println("Background: starting snapshot refresh consumer...")
		if err := container.SnapshotService.Consume(context.Background()); err != nil {
			log.Printf("Background consumer error: %v", err)
		}
	}()

	// Warm the snapshot so the first chat does not pay the load
	go func() {
		if err := container.SnapshotService.Reload(context.Background()); err != nil {
			log.Printf("Initial snapshot load failed (will retry on first request): %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
