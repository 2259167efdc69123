package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"

	"github.com/peterkuimelis/pairs/internal/config"
	"github.com/peterkuimelis/pairs/internal/game"
	"github.com/peterkuimelis/pairs/internal/log"
	pairsmcp "github.com/peterkuimelis/pairs/internal/mcp"
)

func main() {
	config.RegisterFlags(pflag.CommandLine, 9999)
	pflag.Parse()

	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()

	symbols, err := cfg.Symbols()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load symbols: %v\n", err)
		os.Exit(1)
	}

	feed := game.NewRemoteFeed()
	cfg.LoadRemote(context.Background(), logger, feed)

	ec := cfg.EngineConfig(symbols, nil)
	ec.Logger = log.NewSlogLogger(logger)
	pairsmcp.SetEngineConfig(ec)
	pairsmcp.SetRemoteFeed(feed)
	pairsmcp.SetAvailablePairs(cfg.AvailablePairs)
	defer pairsmcp.CloseSession()

	s := server.NewMCPServer("pairs", "1.0.0")
	pairsmcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
