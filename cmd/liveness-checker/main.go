package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Phaust94/oto-parser/internal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	if err := application.RunLivenessCheck(ctx); err != nil {
		log.Fatalf("Liveness check failed: %v", err)
	}
}
