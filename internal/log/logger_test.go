package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestMemoryLoggerSequence(t *testing.T) {
	l := NewMemoryLogger()
	if got := l.LastEvent(); got.Seq != 0 {
		t.Fatalf("empty logger LastEvent = %+v, want zero", got)
	}

	l.Log(NewGameEvent(1, 2, 4))
	l.Log(NewFlipEvent(1, 0, 3, "taxi"))
	l.Log(NewPairCompleteEvent(1, 1, 3, 0, "taxi"))
	l.Log(NewMatchEvent(1, 1, 3, 0, "taxi"))

	events := l.Events()
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	for i, e := range events {
		if e.Seq != i+1 {
			t.Errorf("event %d Seq = %d, want %d", i, e.Seq, i+1)
		}
	}
	if got := l.LastEvent().Type; got != EventMatch {
		t.Errorf("LastEvent type = %s, want Match", got)
	}
	if got := len(l.EventsOfType(EventFlip)); got != 1 {
		t.Errorf("EventsOfType(Flip) = %d, want 1", got)
	}
}

func TestEventDetails(t *testing.T) {
	tests := []struct {
		event GameEvent
		want  string
	}{
		{NewGameEvent(2, 4, 8), "=== Game 2: 4 pairs, 8 cards ==="},
		{NewFlipEvent(1, 0, 0, "bridge"), "card 1 flipped: bridge"},
		{NewPairCompleteEvent(1, 3, 0, 5, "taxi"), "card 6 flipped: taxi (move 3, comparing with card 1)"},
		{NewMatchEvent(1, 3, 0, 5, "taxi"), "cards 1 and 6 match (taxi)"},
		{NewMismatchEvent(1, 3, 0, 5), "cards 1 and 6 do not match, turned back over"},
		{NewWinEvent(1, 7), "all pairs matched in 7 moves"},
		{NewTapIgnoredEvent(1, 0, 9, "out of range"), "tap on card 10 ignored (out of range)"},
	}

	for _, tt := range tests {
		t.Run(tt.event.Type.String(), func(t *testing.T) {
			if tt.event.Details != tt.want {
				t.Errorf("Details = %q, want %q", tt.event.Details, tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	got := FormatEvent(NewFlipEvent(3, 12, 0, "taxi"))
	want := "G3  M12  Flip        | card 1 flipped: taxi"
	if got != want {
		t.Errorf("FormatEvent = %q, want %q", got, want)
	}

	all := FormatAll([]GameEvent{NewGameEvent(1, 2, 4), NewWinEvent(1, 2)})
	if lines := strings.Count(all, "\n"); lines != 2 {
		t.Errorf("FormatAll produced %d lines, want 2", lines)
	}
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.Log(NewMismatchEvent(1, 1, 0, 1))

	if !strings.Contains(buf.String(), "Mismatch") {
		t.Errorf("output %q missing event type", buf.String())
	}
	if len(l.Events()) != 1 {
		t.Errorf("TextLogger kept %d events, want 1", len(l.Events()))
	}
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := NewSlogLogger(logger)
	l.Log(NewGameEvent(4, 3, 6))
	l.Log(NewWinEvent(4, 6))

	out := buf.String()
	for _, want := range []string{"event=Win", "game=4", "move=6", "component=game", "seq=1", "seq=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if events := l.Events(); events != nil {
		t.Errorf("SlogLogger kept %d events, want none", len(events))
	}
}

func TestEventTypeString(t *testing.T) {
	if got := EventType(99).String(); got != "Unknown" {
		t.Errorf("String() = %q, want Unknown", got)
	}
	if got := EventTapIgnored.String(); got != "TapIgnored" {
		t.Errorf("String() = %q, want TapIgnored", got)
	}
}
