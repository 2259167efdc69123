package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"slices"
	"sync"

	"github.com/peterkuimelis/pairs/internal/game"
	"github.com/peterkuimelis/pairs/internal/log"
)

// ErrBadMessage reports a client frame that could not be decoded. Transports
// that can resume reading after it wrap it; the session answers with an
// error message and keeps serving.
var ErrBadMessage = errors.New("bad message")

// Transport moves protocol messages over one client connection.
type Transport interface {
	Send(ctx context.Context, msg ServerMessage) error
	Recv(ctx context.Context) (ClientMessage, error)
	Close() error
}

// LineTransport speaks newline-delimited JSON over a net.Conn.
type LineTransport struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
}

// NewLineTransport creates a transport for the given connection.
func NewLineTransport(conn net.Conn) *LineTransport {
	return &LineTransport{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
	}
}

func (t *LineTransport) Send(ctx context.Context, msg ServerMessage) error {
	return t.enc.Encode(msg)
}

func (t *LineTransport) Recv(ctx context.Context) (ClientMessage, error) {
	var msg ClientMessage
	err := t.dec.Decode(&msg)
	return msg, err
}

func (t *LineTransport) Close() error {
	return t.conn.Close()
}

// Session runs one game for one client: it applies client commands to the
// engine and pushes the table after every change.
type Session struct {
	engine    *game.Engine
	transport Transport
	available []int
	logger    *slog.Logger
	mu        sync.Mutex // serializes Send; engine notifications arrive from the timer goroutine
}

// NewSession creates a session. available lists the pair counts a client may
// ask for.
func NewSession(engine *game.Engine, transport Transport, available []int, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		engine:    engine,
		transport: transport,
		available: available,
		logger:    logger.With("component", "session"),
	}
}

// Run serves the client until it quits, disconnects, or ctx ends.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	closed := make(chan struct{})
	go func() {
		<-ctx.Done()
		s.transport.Close()
		close(closed)
	}()
	defer func() {
		cancel()
		<-closed
	}()

	unsubscribe := s.engine.Subscribe(func(ev log.GameEvent, snap game.Snapshot) {
		if err := s.send(ctx, ServerMessage{
			Type:  "state",
			State: BuildStateView(snap, s.available),
			Event: BuildEventView(ev),
		}); err != nil {
			s.logger.Debug("push state failed", "error", err)
		}
	})
	defer unsubscribe()

	if err := s.sendState(ctx); err != nil {
		return fmt.Errorf("send state: %w", err)
	}

	for {
		msg, err := s.transport.Recv(ctx)
		if errors.Is(err, ErrBadMessage) {
			s.logger.Debug("bad client message", "error", err)
			if err := s.sendError(ctx, err.Error()); err != nil {
				return fmt.Errorf("send error: %w", err)
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("recv: %w", err)
		}

		done, err := s.handle(ctx, msg)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// handle applies one client message. It reports whether the session is over.
func (s *Session) handle(ctx context.Context, msg ClientMessage) (bool, error) {
	switch msg.Type {
	case "tap":
		if !s.engine.Tap(msg.Index) {
			s.logger.Debug("tap ignored", "index", msg.Index)
		}
	case "new_game":
		s.engine.NewGame()
	case "set_pairs":
		if !slices.Contains(s.available, msg.Pairs) {
			return false, s.sendError(ctx, fmt.Sprintf("pairs must be one of %v", s.available))
		}
		s.engine.SetPairs(msg.Pairs)
	case "state":
		return false, s.sendState(ctx)
	case "quit":
		return true, s.send(ctx, ServerMessage{Type: "bye", Result: s.engine.StatusText()})
	default:
		return false, s.sendError(ctx, fmt.Sprintf("unknown message type %q", msg.Type))
	}
	return false, nil
}

func (s *Session) sendState(ctx context.Context) error {
	return s.send(ctx, ServerMessage{
		Type:  "state",
		State: BuildStateView(s.engine.Snapshot(), s.available),
	})
}

func (s *Session) sendError(ctx context.Context, result string) error {
	return s.send(ctx, ServerMessage{Type: "error", Result: result})
}

func (s *Session) send(ctx context.Context, msg ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport.Send(ctx, msg)
}
