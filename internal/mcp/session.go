package mcp

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peterkuimelis/pairs/internal/game"
	"github.com/peterkuimelis/pairs/internal/log"
	pairsnet "github.com/peterkuimelis/pairs/internal/net"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events   []pairsnet.EventView `json:"events"`
	State    *pairsnet.StateView  `json:"state,omitempty"`
	Accepted *bool                `json:"accepted,omitempty"` // for tap_card
	Win      bool                 `json:"win"`
	Result   string               `json:"result,omitempty"`
}

// GameSession holds the state of a single MCP game session.
type GameSession struct {
	engine      *game.Engine
	available   []int
	unsubscribe func()

	mu     sync.Mutex
	events []pairsnet.EventView
}

// NewGameSession creates an engine from cfg through feed and starts
// collecting its events.
func NewGameSession(feed *game.RemoteFeed, cfg game.EngineConfig, available []int) *GameSession {
	sess := &GameSession{available: available}
	sess.engine = feed.NewEngine(cfg)
	sess.unsubscribe = sess.engine.Subscribe(func(ev log.GameEvent, _ game.Snapshot) {
		sess.appendEvent(*pairsnet.BuildEventView(ev))
	})
	return sess
}

// Close stops event collection and cancels any pending resolution.
func (s *GameSession) Close() {
	s.unsubscribe()
	s.engine.Close()
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev pairsnet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []pairsnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []pairsnet.EventView{}
	}
	return events
}

// response builds a ToolResponse from the accumulated events and the
// current table.
func (s *GameSession) response() *ToolResponse {
	snap := s.engine.Snapshot()
	resp := &ToolResponse{
		Events: s.drainEvents(),
		State:  pairsnet.BuildStateView(snap, s.available),
		Win:    snap.Win,
	}
	if snap.Win {
		resp.Result = snap.Status
	}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
