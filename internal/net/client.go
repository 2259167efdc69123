package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
)

const gridColumns = 4

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn net.Conn
	in   io.Reader
	out  io.Writer
}

// NewClient creates a REPL client over conn reading commands from in and
// drawing to out.
func NewClient(conn net.Conn, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, in: in, out: out}
}

// Connect connects to a server and runs the REPL on the terminal.
func Connect(ctx context.Context, addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	fmt.Println("Connected! Dealing cards...")
	return NewClient(conn, os.Stdin, os.Stdout).RunREPL(ctx)
}

// RunREPL draws server messages as they arrive and forwards typed commands.
// It returns when the server says goodbye or closes the connection.
func (c *Client) RunREPL(ctx context.Context) error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)
	errCh := make(chan error, 2)

	// Server → terminal
	go func() {
		for {
			var msg ServerMessage
			if err := dec.Decode(&msg); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
					errCh <- nil
				} else {
					errCh <- fmt.Errorf("read message: %w", err)
				}
				return
			}
			c.render(msg)
			if msg.Type == "bye" {
				errCh <- nil
				return
			}
		}
	}()

	// Terminal → server
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			msg, ok := ParseCommand(scanner.Text())
			if !ok {
				c.printHelp()
				continue
			}
			if err := enc.Encode(msg); err != nil {
				errCh <- fmt.Errorf("send %s: %w", msg.Type, err)
				return
			}
			if msg.Type == "quit" {
				return
			}
		}
		// Input closed: leave the game.
		if err := enc.Encode(ClientMessage{Type: "quit"}); err != nil {
			errCh <- fmt.Errorf("send quit: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ParseCommand turns a REPL line into a protocol message. Card numbers are
// 1-based on the terminal.
func ParseCommand(line string) (ClientMessage, bool) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return ClientMessage{}, false
	}

	switch fields[0] {
	case "q", "quit", "exit":
		return ClientMessage{Type: "quit"}, true
	case "n", "new":
		return ClientMessage{Type: "new_game"}, true
	case "s", "state":
		return ClientMessage{Type: "state"}, true
	case "p", "pairs":
		if len(fields) != 2 {
			return ClientMessage{}, false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return ClientMessage{}, false
		}
		return ClientMessage{Type: "set_pairs", Pairs: n}, true
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 {
		return ClientMessage{}, false
	}
	return ClientMessage{Type: "tap", Index: n - 1}, true
}

func (c *Client) printHelp() {
	fmt.Fprintln(c.out, "Commands: <n> flip card n | n new game | p <k> play k pairs | s redraw | q quit")
}

func (c *Client) render(msg ServerMessage) {
	switch msg.Type {
	case "state":
		if msg.Event != nil {
			fmt.Fprintf(c.out, "\n* %s\n", msg.Event.Details)
		}
		c.renderState(msg.State)
	case "error":
		fmt.Fprintf(c.out, "! %s\n", msg.Result)
	case "bye":
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		fmt.Fprintln(c.out, msg.Result)
		fmt.Fprintln(c.out, "═══════════════════════════════════")
	}
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	fmt.Fprint(c.out, FormatTable(sv))
	if sv.Win {
		fmt.Fprintln(c.out, "You matched all pairs! Type n to play again.")
	} else if !sv.Locked {
		fmt.Fprint(c.out, "> ")
	}
}

// FormatTable draws the grid and status line.
func FormatTable(sv *StateView) string {
	var sb strings.Builder
	sb.WriteString("╔══════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(&sb, "║  %s\n", sv.Status)
	sb.WriteString("║──────────────────────────────────────────────────────\n")
	for row := 0; row*gridColumns < len(sv.Cards); row++ {
		sb.WriteString("║  ")
		for col := 0; col < gridColumns; col++ {
			i := row*gridColumns + col
			if i >= len(sv.Cards) {
				break
			}
			fmt.Fprintf(&sb, "%-14s", formatCard(sv.Cards[i]))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("╚══════════════════════════════════════════════════════╝\n")
	return sb.String()
}

func formatCard(cv CardView) string {
	switch {
	case cv.Matched:
		return fmt.Sprintf("%2d  ", cv.Index+1)
	case !cv.FaceUp:
		return fmt.Sprintf("%2d [??]", cv.Index+1)
	case cv.Kind == "image":
		return fmt.Sprintf("%2d [%s]", cv.Index+1, shortURL(cv.URL))
	default:
		return fmt.Sprintf("%2d [%s]", cv.Index+1, cv.Symbol)
	}
}

// shortURL keeps the last path element so image cards fit in a cell.
// shortURL keeps the first eight characters of the URL's last path segment.
func shortURL(u string) string {
	if i := strings.LastIndex(u, "/"); i >= 0 && i < len(u)-1 {
		u = u[i+1:]
	}
	if r := []rune(u); len(r) > 8 {
		u = string(r[:8])
	}
	return u
}
