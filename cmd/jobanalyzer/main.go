package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobanalyzer/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; the environment may already be set
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
