package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jadermarques/Info-AI-Studio/internal/app"
)

var (
	version   string
	buildTime string
)

func main() {
	if version != "" {
		fmt.Printf("infoai %s (built at: %s)\n", version, buildTime)
	}

	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx, flag.Args()); err != nil {
		application.Logger.WithError(err).Fatal("Run failed")
	}
}
