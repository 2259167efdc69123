package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/peterkuimelis/pairs/internal/config"
	"github.com/peterkuimelis/pairs/internal/game"
	"github.com/peterkuimelis/pairs/internal/log"
	"github.com/peterkuimelis/pairs/internal/web"
)

func main() {
	config.RegisterFlags(pflag.CommandLine, 8080)
	pflag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()

	symbols, err := cfg.Symbols()
	if err != nil {
		return fmt.Errorf("load symbols: %w", err)
	}
	feed := game.NewRemoteFeed()
	cfg.LoadRemote(ctx, logger, feed)

	srv, err := web.NewServer(web.Options{
		SymbolsFile:    cfg.SymbolsFile,
		Pairs:          cfg.Pairs,
		AvailablePairs: cfg.AvailablePairs,
		Remote:         cfg.Remote.Enabled,
		NewEngine: func() *game.Engine {
			ec := cfg.EngineConfig(symbols, nil)
			ec.Logger = log.NewSlogLogger(logger)
			return feed.NewEngine(ec)
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("pairs web UI listening", "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
	return srv.ListenAndServe(ctx, addr)
}
