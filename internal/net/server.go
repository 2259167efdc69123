package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/peterkuimelis/pairs/internal/game"
)

// Server hosts one game per TCP client.
type Server struct {
	Port           string
	NewEngine      func() *game.Engine
	AvailablePairs []int
	Logger         *slog.Logger
}

// Run listens on Port and serves clients until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.logger().Info("waiting for players", "port", s.Port)
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	logger := s.logger().With("remote", conn.RemoteAddr().String())
	logger.Info("player connected")

	engine := s.NewEngine()
	defer engine.Close()

	sess := NewSession(engine, NewLineTransport(conn), s.AvailablePairs, logger)
	if err := sess.Run(ctx); err != nil {
		logger.Warn("session ended with error", "error", err)
		return
	}
	logger.Info("player disconnected", "status", engine.StatusText())
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
