package main

import (
	"context"
	"fmt"
	"log/slog"
	stdnet "net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/peterkuimelis/pairs/internal/config"
	"github.com/peterkuimelis/pairs/internal/game"
	"github.com/peterkuimelis/pairs/internal/log"
	pairsnet "github.com/peterkuimelis/pairs/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	cmd := os.Args[1]
	switch cmd {
	case "play":
		err = runPlay(ctx, os.Args[2:])
	case "host":
		err = runHost(ctx, os.Args[2:])
	case "join":
		err = runJoin(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  pairs play [--pairs N] [--symbols_file FILE] [--config FILE]")
	fmt.Println("  pairs host [--port P] [--pairs N] [--config FILE]")
	fmt.Println("  pairs join [--addr ADDR]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Play a game in this terminal")
	fmt.Println("  host    Start a game server; every client gets its own table")
	fmt.Println("  join    Connect to a game server and play")
}

// loadConfig parses args into a Config and sets up process logging.
func loadConfig(name string, args []string) (*config.Config, *slog.Logger, error) {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	config.RegisterFlags(fs, 9000)
	fs.Parse(args)

	cfg, err := config.Load(fs)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.NewLogger(), nil
}

// engineFactory resolves the symbol set, starts the remote fetch in the
// background and returns a constructor for per-player engines. Engines deal
// symbols until remote content arrives, then re-deal with it.
func engineFactory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (func() *game.Engine, error) {
	symbols, err := cfg.Symbols()
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	feed := game.NewRemoteFeed()
	cfg.LoadRemote(ctx, logger, feed)

	return func() *game.Engine {
		ec := cfg.EngineConfig(symbols, nil)
		ec.Logger = log.NewSlogLogger(logger)
		return feed.NewEngine(ec)
	}, nil
}

func runPlay(ctx context.Context, args []string) error {
	cfg, logger, err := loadConfig("play", args)
	if err != nil {
		return err
	}
	newEngine, err := engineFactory(ctx, cfg, logger)
	if err != nil {
		return err
	}

	engine := newEngine()
	defer engine.Close()

	serverConn, clientConn := stdnet.Pipe()
	defer clientConn.Close()

	sess := pairsnet.NewSession(engine, pairsnet.NewLineTransport(serverConn), cfg.AvailablePairs, logger)
	go func() {
		if err := sess.Run(ctx); err != nil {
			logger.Warn("session ended with error", "error", err)
		}
	}()

	return pairsnet.NewClient(clientConn, os.Stdin, os.Stdout).RunREPL(ctx)
}

func runHost(ctx context.Context, args []string) error {
	cfg, logger, err := loadConfig("host", args)
	if err != nil {
		return err
	}
	newEngine, err := engineFactory(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := &pairsnet.Server{
		Port:           fmt.Sprint(cfg.Port),
		NewEngine:      newEngine,
		AvailablePairs: cfg.AvailablePairs,
		Logger:         logger,
	}
	return srv.Run(ctx)
}

func runJoin(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("join", pflag.ExitOnError)
	addr := fs.String("addr", "localhost:9000", "server address to connect to")
	fs.Parse(args)

	return pairsnet.Connect(ctx, *addr)
}
