package net

import (
	"github.com/peterkuimelis/pairs/internal/game"
	"github.com/peterkuimelis/pairs/internal/log"
)

// Message types for the JSON protocol. The TCP transport sends one JSON
// object per line; the WebSocket transport sends one per text frame.

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"` // "state", "error" or "bye"

	// For "state"
	State *StateView `json:"state,omitempty"`
	Event *EventView `json:"event,omitempty"` // event that produced the state

	// For "error" and "bye"
	Result string `json:"result,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Game     int    `json:"game"`
	Move     int    `json:"move"`
	Type     string `json:"type"`
	Position int    `json:"position"`
	Card     string `json:"card,omitempty"`
	Details  string `json:"details"`
}

// StateView is the table as the player sees it.
type StateView struct {
	Game           int        `json:"game"`
	Pairs          int        `json:"pairs"`
	AvailablePairs []int      `json:"available_pairs,omitempty"`
	Moves          int        `json:"moves"`
	Locked         bool       `json:"locked"`
	Win            bool       `json:"win"`
	Status         string     `json:"status"`
	Cards          []CardView `json:"cards"`
}

// CardView describes one card position. Content is only revealed while the
// card is face up.
type CardView struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	FaceUp  bool   `json:"face_up,omitempty"`
	Matched bool   `json:"matched,omitempty"`
	Kind    string `json:"kind,omitempty"`   // "symbol" or "image"
	Symbol  string `json:"symbol,omitempty"` // for "symbol"
	URL     string `json:"url,omitempty"`    // for "image"
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"` // "tap", "new_game", "set_pairs", "state" or "quit"

	// For "tap" (0-based card position)
	Index int `json:"index,omitempty"`

	// For "set_pairs"
	Pairs int `json:"pairs,omitempty"`
}

// BuildStateView creates a StateView from an engine snapshot.
func BuildStateView(snap game.Snapshot, available []int) *StateView {
	sv := &StateView{
		Game:           snap.Game,
		Pairs:          snap.Pairs,
		AvailablePairs: available,
		Moves:          snap.Moves,
		Locked:         snap.Locked,
		Win:            snap.Win,
		Status:         snap.Status,
		Cards:          make([]CardView, 0, len(snap.Cards)),
	}
	for i, c := range snap.Cards {
		sv.Cards = append(sv.Cards, BuildCardView(i, c))
	}
	return sv
}

// BuildCardView creates a CardView for the card at index.
func BuildCardView(index int, c game.Card) CardView {
	cv := CardView{
		Index:   index,
		ID:      c.ID.String(),
		FaceUp:  c.FaceUp,
		Matched: c.Matched,
	}
	if !c.FaceUp {
		return cv
	}
	switch c.Content.Kind {
	case game.ContentSymbol:
		cv.Kind = "symbol"
		cv.Symbol = c.Content.Symbol
	case game.ContentImage:
		cv.Kind = "image"
		cv.URL = c.Content.URL
	case game.ContentQuestionAnswer:
		cv.Kind = "text"
		cv.Symbol = c.Content.Label()
	}
	return cv
}

// BuildEventView converts a game event for the wire.
func BuildEventView(ev log.GameEvent) *EventView {
	return &EventView{
		Game:     ev.Game,
		Move:     ev.Move,
		Type:     ev.Type.String(),
		Position: ev.Position,
		Card:     ev.Card,
		Details:  ev.Details,
	}
}
