package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- SlogLogger: forwards events to a structured logger ---

// SlogLogger emits each event as a debug record. It keeps no history, so
// Events always returns nil; only the sequence counter is retained.
type SlogLogger struct {
	logger *slog.Logger
	seq    int
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger.With("component", "game")}
}

func (l *SlogLogger) Log(event GameEvent) {
	l.seq++
	l.logger.Debug(event.Details,
		"seq", l.seq,
		"event", event.Type.String(),
		"game", event.Game,
		"move", event.Move,
		"position", event.Position,
		"card", event.Card)
}

func (l *SlogLogger) Events() []GameEvent {
	return nil
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	kind := e.Type.String()
	// Pad event type to 12 chars for alignment
	for len(kind) < 12 {
		kind += " "
	}
	return fmt.Sprintf("G%-2d M%-3d %s| %s", e.Game, e.Move, kind, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewGameEvent(game, pairs, cards int) GameEvent {
	return GameEvent{
		Game:     game,
		Type:     EventNewGame,
		Position: -1,
		Details:  fmt.Sprintf("=== Game %d: %d pairs, %d cards ===", game, pairs, cards),
	}
}

func NewFlipEvent(game, move, position int, card string) GameEvent {
	return GameEvent{
		Game:     game,
		Move:     move,
		Type:     EventFlip,
		Position: position,
		Card:     card,
		Details:  fmt.Sprintf("card %d flipped: %s", position+1, card),
	}
}

func NewPairCompleteEvent(game, move, first, second int, card string) GameEvent {
	return GameEvent{
		Game:     game,
		Move:     move,
		Type:     EventPairComplete,
		Position: second,
		Card:     card,
		Details:  fmt.Sprintf("card %d flipped: %s (move %d, comparing with card %d)", second+1, card, move, first+1),
	}
}

func NewMatchEvent(game, move, first, second int, card string) GameEvent {
	return GameEvent{
		Game:     game,
		Move:     move,
		Type:     EventMatch,
		Position: second,
		Card:     card,
		Details:  fmt.Sprintf("cards %d and %d match (%s)", first+1, second+1, card),
	}
}

func NewMismatchEvent(game, move, first, second int) GameEvent {
	return GameEvent{
		Game:     game,
		Move:     move,
		Type:     EventMismatch,
		Position: second,
		Details:  fmt.Sprintf("cards %d and %d do not match, turned back over", first+1, second+1),
	}
}

func NewWinEvent(game, move int) GameEvent {
	return GameEvent{
		Game:     game,
		Move:     move,
		Type:     EventWin,
		Position: -1,
		Details:  fmt.Sprintf("all pairs matched in %d moves", move),
	}
}

func NewTapIgnoredEvent(game, move, position int, reason string) GameEvent {
	return GameEvent{
		Game:     game,
		Move:     move,
		Type:     EventTapIgnored,
		Position: position,
		Details:  fmt.Sprintf("tap on card %d ignored (%s)", position+1, reason),
	}
}
