package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/pairs/internal/game"
	pairsnet "github.com/peterkuimelis/pairs/internal/net"
)

func newTestServer(t *testing.T, symbolsFile string) *httptest.Server {
	t.Helper()
	srv, err := NewServer(Options{
		SymbolsFile:    symbolsFile,
		Pairs:          4,
		AvailablePairs: game.AvailablePairs,
		NewEngine: func() *game.Engine {
			return game.NewEngine(game.EngineConfig{Pairs: 2, MatchDelay: 10 * time.Millisecond, MismatchDelay: 20 * time.Millisecond, Seed: 3})
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestNewServerRequiresEngine(t *testing.T) {
	_, err := NewServer(Options{})
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "<title>Pairs</title>")

	resp, err = http.Get(ts.URL + "/static/style.css")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConfigEndpoint(t *testing.T) {
	ts := newTestServer(t, "")

	var info ConfigInfo
	getJSON(t, ts.URL+"/api/config", &info)
	assert.Equal(t, 4, info.Pairs)
	assert.Equal(t, []int{2, 4, 6, 8}, info.AvailablePairs)
	assert.False(t, info.Remote)
}

func TestSymbolsEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	var sets []SymbolSetInfo
	getJSON(t, ts.URL+"/api/symbols", &sets)
	require.Len(t, sets, 1)
	assert.Equal(t, game.DefaultSymbols, sets[0].Symbols)

	path := filepath.Join(t.TempDir(), "symbols.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sets:
  - name: fruit
    symbols: [apple, pear, apple]
  - name: transit
    symbols: [tram.fill, taxi]
`), 0o644))
	ts = newTestServer(t, path)
	sets = nil
	getJSON(t, ts.URL+"/api/symbols", &sets)
	require.Len(t, sets, 2)
	assert.Equal(t, SymbolSetInfo{Number: 1, Name: "fruit", Symbols: []string{"apple", "pear"}}, sets[0])
	assert.Equal(t, "transit", sets[1].Name)

	ts = newTestServer(t, filepath.Join(t.TempDir(), "missing.yaml"))
	resp, err := http.Get(ts.URL + "/api/symbols")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestWebSocketGame(t *testing.T) {
	ts := newTestServer(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	read := func() pairsnet.ServerMessage {
		t.Helper()
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg pairsnet.ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}
	write := func(msg pairsnet.ClientMessage) {
		t.Helper()
		data, err := json.Marshal(msg)
		require.NoError(t, err)
		require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
	}

	msg := read()
	require.Equal(t, "state", msg.Type)
	require.Len(t, msg.State.Cards, 4)

	write(pairsnet.ClientMessage{Type: "tap", Index: 0})
	msg = read()
	assert.Equal(t, "Flip", msg.Event.Type)
	assert.True(t, msg.State.Cards[0].FaceUp)

	write(pairsnet.ClientMessage{Type: "set_pairs", Pairs: 8})
	msg = read()
	assert.Equal(t, "NewGame", msg.Event.Type)
	assert.Len(t, msg.State.Cards, 10, "only five built-in symbols")

	write(pairsnet.ClientMessage{Type: "quit"})
	msg = read()
	assert.Equal(t, "bye", msg.Type)

	_, _, err = conn.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestWebSocketBadFrameKeepsSession(t *testing.T) {
	ts := newTestServer(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	read := func() pairsnet.ServerMessage {
		t.Helper()
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg pairsnet.ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	require.Equal(t, "state", read().Type)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("not json")))
	msg := read()
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Result, "bad message")

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"tap","index":1}`)))
	msg = read()
	assert.Equal(t, "state", msg.Type)
	require.NotNil(t, msg.Event)
	assert.Equal(t, "Flip", msg.Event.Type)
	assert.True(t, msg.State.Cards[1].FaceUp)
}
