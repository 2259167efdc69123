package mcp

import (
	"context"
	"fmt"
	"slices"

	"github.com/peterkuimelis/pairs/internal/game"
)

// NewGame deals a fresh deck. pairs of 0 keeps the current pair count.
func (s *GameSession) NewGame(pairs int) (*ToolResponse, error) {
	if pairs == 0 {
		s.engine.NewGame()
		return s.response(), nil
	}
	if !slices.Contains(s.available, pairs) {
		return nil, fmt.Errorf("pairs must be one of %v, got %d", s.available, pairs)
	}
	s.engine.SetPairs(pairs)
	return s.response(), nil
}

// Tap turns over the card at position. When the tap completes a pair it
// waits for the pair to resolve so the agent sees the final outcome.
func (s *GameSession) Tap(ctx context.Context, position int) (*ToolResponse, error) {
	snap := s.engine.Snapshot()
	if position < 0 || position >= len(snap.Cards) {
		return nil, fmt.Errorf("position %d out of range, must be 0-%d", position, len(snap.Cards)-1)
	}

	accepted := s.engine.Tap(position)
	if accepted {
		if err := s.engine.AwaitIdle(ctx); err != nil {
			return nil, fmt.Errorf("wait for resolution: %w", err)
		}
	}

	resp := s.response()
	resp.Accepted = &accepted
	if !accepted {
		resp.Result = tapRejection(snap, position)
	}
	return resp, nil
}

// tapRejection explains why a tap at position changed nothing.
func tapRejection(snap game.Snapshot, position int) string {
	c := snap.Cards[position]
	switch {
	case snap.Locked:
		return "a pair is being resolved"
	case c.Matched:
		return fmt.Sprintf("card %d is already matched", position)
	case c.FaceUp:
		return fmt.Sprintf("card %d is already face up", position)
	default:
		return "tap ignored"
	}
}
