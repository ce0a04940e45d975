package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"fuser-service/cmd/api/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("application exited with error: %v", err)
	}
}
