package main

import (
	"context"
	"log"

	"github.com/fatih/color"

	"doc-session-be/internal/bootstrap"
	"doc-session-be/internal/config"
	"doc-session-be/internal/server"
	"doc-session-be/internal/tracer"
)

func main() {
	// 1. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 2. Configuration
	cfg := config.Load()

	// 3. Bootstrap dependencies
	container := bootstrap.NewContainer(cfg)

	// 4. Background services
	go func() {
		log.Println("Background: Starting Ingest Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	go func() {
		log.Println("Background: Starting Session Reaper...")
		container.ReaperService.Run(context.Background())
	}()

	color.Cyan("doc-session-be")
	color.Green("Session TTL: %s | Reap interval: %s", cfg.Session.TTL, cfg.Session.ReapInterval)

	// 5. Serve
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
