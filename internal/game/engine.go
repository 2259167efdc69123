package game

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/peterkuimelis/pairs/internal/log"
)

const (
	DefaultPairs         = 4
	DefaultMatchDelay    = 350 * time.Millisecond
	DefaultMismatchDelay = 800 * time.Millisecond
)

// AvailablePairs are the pair counts offered to the player.
var AvailablePairs = []int{2, 4, 6, 8}

// EngineConfig holds configuration for creating a new engine.
type EngineConfig struct {
	Pairs         int          // requested pair count (0 for DefaultPairs)
	Remote        []RemoteItem // remote image content, may be empty
	Symbols       []string     // fallback symbols (nil for DefaultSymbols)
	MatchDelay    time.Duration
	MismatchDelay time.Duration
	Logger        log.EventLogger
	Scheduler     Scheduler // nil for ClockScheduler
	Seed          int64     // RNG seed (0 for random)
}

// Snapshot is a read-only copy of a game session's state.
type Snapshot struct {
	Game   int
	Pairs  int
	Cards  []Card
	Moves  int
	Locked bool
	Win    bool
	Status string
}

// Listener receives every state-changing event together with the state it
// produced. Listeners run outside the engine lock and may call back into it.
// Events reach listeners in the order they happened, whichever goroutine
// caused them.
type Listener func(event log.GameEvent, snap Snapshot)

// notification is one queued listener call, or, when release is set, a
// marker that closes release once everything before it was delivered.
type notification struct {
	event   log.GameEvent
	snap    Snapshot
	release chan struct{}
}

// Engine owns one game session: the live deck, move count, the pending first
// pick and the lock held while a completed pair is being resolved.
//
// It models a single player. The mutex only protects state from the
// resolution timer, which fires on its own goroutine.
type Engine struct {
	mu sync.Mutex

	cards      []Card
	moves      int
	pending    int // position of the first pick, -1 if none
	locked     bool
	generation int
	closed     bool

	pairs   int
	remote  []RemoteItem
	symbols []string

	matchDelay    time.Duration
	mismatchDelay time.Duration
	logger        log.EventLogger
	sched         Scheduler
	rng           *rand.Rand

	timer Timer
	idle  chan struct{} // closed whenever no resolution is pending

	listeners    map[int]Listener
	nextListener int
	queue        []notification // delivered in emit order
	delivering   bool           // a goroutine is draining queue
}

// NewEngine creates an engine and deals the first deck.
func NewEngine(cfg EngineConfig) *Engine {
	pairs := cfg.Pairs
	if pairs == 0 {
		pairs = DefaultPairs
	}
	symbols := cfg.Symbols
	if symbols == nil {
		symbols = DefaultSymbols
	}
	matchDelay := cfg.MatchDelay
	if matchDelay <= 0 {
		matchDelay = DefaultMatchDelay
	}
	mismatchDelay := cfg.MismatchDelay
	if mismatchDelay <= 0 {
		mismatchDelay = DefaultMismatchDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = ClockScheduler{}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	idle := make(chan struct{})
	close(idle)

	e := &Engine{
		pending:       -1,
		pairs:         pairs,
		remote:        cfg.Remote,
		symbols:       symbols,
		matchDelay:    matchDelay,
		mismatchDelay: mismatchDelay,
		logger:        logger,
		sched:         sched,
		rng:           rand.New(rand.NewSource(seed)),
		idle:          idle,
		listeners:     make(map[int]Listener),
	}
	e.mu.Lock()
	e.resetLocked()
	e.queue = nil // nobody can be subscribed yet
	e.mu.Unlock()
	return e
}

// Tap turns over the card at position. It reports whether the tap was
// accepted; taps while locked, out of range, or on a face-up or matched card
// change nothing.
func (e *Engine) Tap(position int) bool {
	e.mu.Lock()
	ok := e.tapLocked(position)
	e.deliver()
	return ok
}

// Reset deals a new deck from the given sources and starts a fresh session.
// Any resolution still pending from the previous session is discarded.
func (e *Engine) Reset(pairCount int, remote []RemoteItem, fallback []string) {
	e.mu.Lock()
	e.pairs = pairCount
	e.remote = remote
	e.symbols = fallback
	e.resetLocked()
	e.deliver()
}

// NewGame starts a fresh session with the current pair count and sources.
func (e *Engine) NewGame() {
	e.mu.Lock()
	e.resetLocked()
	e.deliver()
}

// SetPairs changes the requested pair count and starts a fresh session.
func (e *Engine) SetPairs(n int) {
	e.mu.Lock()
	e.pairs = n
	e.resetLocked()
	e.deliver()
}

// SetRemote installs remote content and starts a fresh session.
func (e *Engine) SetRemote(items []RemoteItem) {
	e.mu.Lock()
	e.remote = items
	e.resetLocked()
	e.deliver()
}

// Close cancels any pending resolution. A closed engine ignores taps.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.stopTimerLocked()
	e.unlockLocked()
}

// Closed reports whether Close has been called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Subscribe registers a listener and returns a function that removes it.
func (e *Engine) Subscribe(fn Listener) (cancel func()) {
	e.mu.Lock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// AwaitIdle blocks until no pair is being resolved or ctx is done.
func (e *Engine) AwaitIdle(ctx context.Context) error {
	e.mu.Lock()
	idle := e.idle
	e.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// --- Read-only state ---

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Cards returns a copy of the deck in table order.
func (e *Engine) Cards() []Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Card(nil), e.cards...)
}

// Moves returns the number of completed pick-pairs.
func (e *Engine) Moves() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moves
}

// Pairs returns the requested pair count.
func (e *Engine) Pairs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pairs
}

// IsLocked reports whether a completed pair is waiting for resolution.
func (e *Engine) IsLocked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.locked
}

// IsWin reports whether the deck is non-empty and every card is matched.
func (e *Engine) IsWin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isWinLocked()
}

// StatusText returns the one-line status shown above the grid.
func (e *Engine) StatusText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statusLocked()
}

// --- Internals (called with mu held) ---

func (e *Engine) resetLocked() {
	e.stopTimerLocked()
	e.unlockLocked()
	e.generation++
	e.cards = BuildDeck(e.rng, e.pairs, e.remote, e.symbols)
	e.moves = 0
	e.pending = -1
	e.emit(log.NewGameEvent(e.generation, e.pairs, len(e.cards)))
}

func (e *Engine) tapLocked(pos int) bool {
	if reason := e.rejectReason(pos); reason != "" {
		e.logger.Log(log.NewTapIgnoredEvent(e.generation, e.moves, pos, reason))
		return false
	}

	e.cards[pos].FaceUp = true
	label := e.cards[pos].Content.Label()

	if e.pending < 0 {
		e.pending = pos
		e.emit(log.NewFlipEvent(e.generation, e.moves, pos, label))
		return true
	}

	first := e.pending
	e.moves++
	e.locked = true
	e.idle = make(chan struct{})

	match := EqualContent(e.cards[first].Content, e.cards[pos].Content)
	delay := e.mismatchDelay
	if match {
		delay = e.matchDelay
	}

	gen := e.generation
	e.timer = e.sched.AfterFunc(delay, func() {
		e.resolve(gen, first, pos, match)
	})
	e.emit(log.NewPairCompleteEvent(e.generation, e.moves, first, pos, label))
	return true
}

func (e *Engine) rejectReason(pos int) string {
	switch {
	case e.closed:
		return "engine closed"
	case e.locked:
		return "pair resolving"
	case pos < 0 || pos >= len(e.cards):
		return "out of range"
	case e.cards[pos].Matched:
		return "already matched"
	case e.cards[pos].FaceUp:
		return "already face up"
	default:
		return ""
	}
}

// resolve finalizes the pick-pair (first, second) of session gen. It is a
// no-op once the session has been replaced.
func (e *Engine) resolve(gen, first, second int, match bool) {
	e.mu.Lock()
	if gen != e.generation || !e.locked {
		e.mu.Unlock()
		return
	}
	e.timer = nil

	if match {
		e.cards[first].Matched = true
		e.cards[second].Matched = true
	} else {
		e.cards[first].FaceUp = false
		e.cards[second].FaceUp = false
	}
	e.pending = -1
	// idle is released only after listeners have seen the outcome.
	e.locked = false
	idle := e.idle

	if match {
		e.emit(log.NewMatchEvent(e.generation, e.moves, first, second, e.cards[second].Content.Label()))
		if e.isWinLocked() {
			e.emit(log.NewWinEvent(e.generation, e.moves))
		}
	} else {
		e.emit(log.NewMismatchEvent(e.generation, e.moves, first, second))
	}

	e.queue = append(e.queue, notification{release: idle})
	e.deliver()
}

func (e *Engine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) unlockLocked() {
	if !e.locked {
		return
	}
	e.locked = false
	close(e.idle)
}

func (e *Engine) isWinLocked() bool {
	if len(e.cards) == 0 {
		return false
	}
	for _, c := range e.cards {
		if !c.Matched {
			return false
		}
	}
	return true
}

func (e *Engine) statusLocked() string {
	if e.isWinLocked() {
		return fmt.Sprintf("Completed in %d moves", e.moves)
	}
	return fmt.Sprintf("Moves: %d  •  Pairs: %d", e.moves, e.pairs)
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Game:   e.generation,
		Pairs:  e.pairs,
		Cards:  append([]Card(nil), e.cards...),
		Moves:  e.moves,
		Locked: e.locked,
		Win:    e.isWinLocked(),
		Status: e.statusLocked(),
	}
}

// emit logs an event and queues it for listeners.
func (e *Engine) emit(ev log.GameEvent) {
	e.logger.Log(ev)
	if len(e.listeners) == 0 {
		return
	}
	e.queue = append(e.queue, notification{event: ev, snap: e.snapshotLocked()})
}

// deliver hands queued notifications to listeners in emit order. It must be
// called with mu held and returns with mu released. Only one goroutine
// delivers at a time: a call made while another goroutine (or a listener)
// is delivering leaves its notifications to that goroutine.
func (e *Engine) deliver() {
	if e.delivering {
		e.mu.Unlock()
		return
	}
	e.delivering = true
	for len(e.queue) > 0 {
		n := e.queue[0]
		e.queue = e.queue[1:]

		if n.release != nil {
			if len(e.queue) == 0 {
				// Hand delivery back before waking AwaitIdle callers so
				// their next call delivers its own notifications.
				e.delivering = false
				e.mu.Unlock()
				close(n.release)
				return
			}
			e.mu.Unlock()
			close(n.release)
			e.mu.Lock()
			continue
		}

		listeners := e.listenerList()
		e.mu.Unlock()
		for _, l := range listeners {
			l(n.event, n.snap)
		}
		e.mu.Lock()
	}
	e.delivering = false
	e.mu.Unlock()
}

// listenerList returns the current listeners in subscription order.
func (e *Engine) listenerList() []Listener {
	ids := make([]int, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, e.listeners[id])
	}
	return out
}
