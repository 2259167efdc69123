package mcp

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/pairs/internal/game"
)

var (
	// sessionMu guards activeSession; tool calls may arrive concurrently.
	sessionMu sync.Mutex

	// activeSession is the singleton game session (one per stdio process).
	activeSession *GameSession

	// engineConfig is the configuration for new sessions, set by main.
	engineConfig game.EngineConfig

	// availablePairs are the pair counts new_game accepts, set by main.
	availablePairs = game.AvailablePairs

	// feed supplies remote content to new sessions, set by main.
	feed = game.NewRemoteFeed()
)

// SetEngineConfig sets the configuration used to create the game engine.
func SetEngineConfig(cfg game.EngineConfig) {
	engineConfig = cfg
}

// SetAvailablePairs sets the pair counts new_game accepts.
func SetAvailablePairs(pairs []int) {
	availablePairs = pairs
}

// SetRemoteFeed sets the source of remote content for new sessions.
func SetRemoteFeed(f *game.RemoteFeed) {
	feed = f
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(newGameTool(), handleNewGame)
	s.AddTool(tapCardTool(), handleTapCard)
	s.AddTool(getGameStateTool(), handleGetGameState)
}

// CloseSession ends the active session, if any.
func CloseSession() {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if activeSession != nil {
		activeSession.Close()
		activeSession = nil
	}
}

// --- Tool definitions ---

func newGameTool() mcp.Tool {
	return mcp.NewTool("new_game",
		mcp.WithDescription("Deal a new memory game: a shuffled grid of face-down cards holding pairs of equal content. "+
			"Returns the table with every card face down. Starting a new game abandons the current one."),
		mcp.WithNumber("pairs", mcp.Description("Number of pairs to deal (one of the available pair counts). Omit to keep the current count.")),
	)
}

func tapCardTool() mcp.Tool {
	return mcp.NewTool("tap_card",
		mcp.WithDescription("Turn over the card at a position. The first tap of a move reveals one card; the second completes the move. "+
			"A completed move waits for the pair to resolve: matching cards stay up as matched, others are turned back face down. "+
			"Events in the response show both revealed cards even when they were turned back."),
		mcp.WithNumber("position", mcp.Required(), mcp.Description("0-based card position in the grid")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current table and accumulated events without tapping a card. Read-only."),
	)
}

// --- Tool handlers ---

// session returns the active session, starting one if none is running.
func session() *GameSession {
	if activeSession == nil {
		activeSession = NewGameSession(feed, engineConfig, availablePairs)
	}
	return activeSession
}

func handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	pairs := request.GetInt("pairs", 0)
	if pairs < 0 {
		return mcp.NewToolResultError("pairs must be positive"), nil
	}

	resp, err := session().NewGame(pairs)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleTapCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use new_game first."), nil
	}

	position := request.GetInt("position", -1)
	resp, err := activeSession.Tap(ctx, position)
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid tap: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use new_game first."), nil
	}
	return mcp.NewToolResultText(respondJSON(activeSession.response())), nil
}
