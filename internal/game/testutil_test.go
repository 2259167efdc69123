package game

import (
	"sync"
	"testing"
	"time"

	"github.com/peterkuimelis/pairs/internal/log"
)

// manualScheduler is a Scheduler driven by the test. Timers only run when
// the test calls Fire.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Fire runs every timer that has not been stopped or fired yet and returns
// how many ran.
func (s *manualScheduler) Fire() int {
	return s.run(false)
}

// FireStale runs every timer that has not fired, including stopped ones.
// It models a timer whose callback was already underway when Stop was called.
func (s *manualScheduler) FireStale() int {
	return s.run(true)
}

func (s *manualScheduler) run(includeStopped bool) int {
	s.mu.Lock()
	var due []*manualTimer
	for _, t := range s.timers {
		if t.fired || (t.stopped && !includeStopped) {
			continue
		}
		t.fired = true
		due = append(due, t)
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}

// LastDelay returns the delay of the most recently scheduled timer.
func (s *manualScheduler) LastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return 0
	}
	return s.timers[len(s.timers)-1].delay
}

// newTestEngine builds an engine on a manual scheduler and replaces its deck
// with the given cards, in order.
func newTestEngine(t *testing.T, cards []Card) (*Engine, *manualScheduler, *log.MemoryLogger) {
	t.Helper()
	sched := &manualScheduler{}
	logger := log.NewMemoryLogger()
	e := NewEngine(EngineConfig{
		Pairs:     len(cards) / 2,
		Logger:    logger,
		Scheduler: sched,
		Seed:      1,
	})
	e.mu.Lock()
	e.cards = append([]Card(nil), cards...)
	e.mu.Unlock()
	return e, sched, logger
}

// symbolDeck builds an unshuffled deck from symbol names, one card per name.
func symbolDeck(names ...string) []Card {
	var cards []Card
	for _, n := range names {
		cards = append(cards, NewCard(Symbol(n)))
	}
	return cards
}

// contentCounts counts cards per content value.
func contentCounts(cards []Card) map[Content]int {
	counts := make(map[Content]int)
	for _, c := range cards {
		counts[c.Content]++
	}
	return counts
}
