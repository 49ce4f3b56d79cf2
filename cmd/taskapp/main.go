// Package main is the entry point for the taskapp CLI and web server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskapp/internal/backend/jsonplaceholder"
	"taskapp/internal/cli"
	"taskapp/internal/commands"
	"taskapp/internal/config"
	"taskapp/internal/logging"
	"taskapp/internal/service"
)

func main() {
	// Cancel on interrupt; serve shuts down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return jsonplaceholder.New(cfg, logging.New(os.Stderr, cfg.Debug))
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
