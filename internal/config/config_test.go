package config

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/pairs/internal/game"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, 9000)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pairs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlags(t, "--config", ""))
	require.NoError(t, err)

	assert.Equal(t, game.DefaultPairs, cfg.Pairs)
	assert.Equal(t, []int{2, 4, 6, 8}, cfg.AvailablePairs)
	assert.Equal(t, game.DefaultMatchDelay, cfg.MatchDelay)
	assert.Equal(t, game.DefaultMismatchDelay, cfg.MismatchDelay)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.Remote.Enabled)
}

func TestLoadMissingDefaultFileIsOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(newFlags(t))
	require.NoError(t, err)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	require.Error(t, err)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, `
pairs: 6
match_delay: 200ms
log_level: debug
remote:
  enabled: true
  app_id: file-app
  api_key: file-key
`)
	t.Setenv("PAIRS_PAIRS", "2")
	t.Setenv("PAIRS_REMOTE__APP_ID", "env-app")

	cfg, err := Load(newFlags(t, "--config", path, "--log_level", "warn"))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Pairs, "env beats file")
	assert.Equal(t, 200*time.Millisecond, cfg.MatchDelay, "file beats default")
	assert.Equal(t, "warn", cfg.LogLevel, "flag beats file")
	assert.True(t, cfg.Remote.Enabled)
	assert.Equal(t, "env-app", cfg.Remote.AppID)
	assert.Equal(t, "file-key", cfg.Remote.APIKey)

	cfg, err = Load(newFlags(t, "--config", path, "--pairs", "8"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Pairs, "flag beats env")
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero pairs", []string{"--pairs", "0"}},
		{"bad log level", []string{"--log_level", "loud"}},
		{"mismatch not slower", []string{"--match_delay", "900ms", "--mismatch_delay", "800ms"}},
		{"remote without credentials", []string{"--remote.enabled"}},
		{"bad remote url", []string{"--remote.url", "::nope"}},
		{"port out of range", []string{"--port", "70000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", ""}, tt.args...)
			_, err := Load(newFlags(t, args...))
			assert.Error(t, err)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "match_delay", envKey("PAIRS_MATCH_DELAY"))
	assert.Equal(t, "remote.api_key", envKey("PAIRS_REMOTE__API_KEY"))
}

func TestSymbols(t *testing.T) {
	cfg, err := Load(newFlags(t, "--config", ""))
	require.NoError(t, err)

	syms, err := cfg.Symbols()
	require.NoError(t, err)
	assert.Equal(t, game.DefaultSymbols, syms)

	path := filepath.Join(t.TempDir(), "symbols.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sets:\n  - name: fruit\n    symbols: [apple, pear]\n"), 0o644))
	cfg.SymbolsFile = path
	cfg.SymbolSet = "fruit"
	syms, err = cfg.Symbols()
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "pear"}, syms)
}

func TestFetchRemote(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg, err := Load(newFlags(t, "--config", ""))
	require.NoError(t, err)
	assert.Nil(t, cfg.FetchRemote(context.Background(), logger), "disabled source fetches nothing")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"results":[{"objectId":"x","name":"X","image":{"url":"https://img/x.jpg"}}]}`)
	}))
	defer srv.Close()

	cfg.Remote = RemoteConfig{Enabled: true, URL: srv.URL, AppID: "a", APIKey: "k", Timeout: time.Second}
	items := cfg.FetchRemote(context.Background(), logger)
	require.Len(t, items, 1)
	assert.Equal(t, "https://img/x.jpg", items[0].ImageURL)
}

func TestLoadRemoteRedealsInBackground(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		io.WriteString(w, `{"results":[
			{"objectId":"a","name":"A","image":{"url":"https://img/a.jpg"}},
			{"objectId":"b","name":"B","image":{"url":"https://img/b.jpg"}}]}`)
	}))
	defer srv.Close()

	cfg, err := Load(newFlags(t, "--config", "", "--pairs", "2"))
	require.NoError(t, err)
	cfg.Remote = RemoteConfig{Enabled: true, URL: srv.URL, AppID: "a", APIKey: "k", Timeout: time.Second}

	feed := game.NewRemoteFeed()
	engine := feed.NewEngine(cfg.EngineConfig(game.DefaultSymbols, nil))
	defer engine.Close()

	cfg.LoadRemote(context.Background(), logger, feed)
	assert.Equal(t, game.ContentSymbol, engine.Cards()[0].Content.Kind, "first deal does not wait for the fetch")

	close(release)
	assert.Eventually(t, func() bool {
		return engine.Cards()[0].Content.Kind == game.ContentImage
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, feed.Items(), 2)
}

func TestEngineConfig(t *testing.T) {
	cfg := &Config{Pairs: 6, MatchDelay: time.Second, MismatchDelay: 2 * time.Second, Seed: 5}
	ec := cfg.EngineConfig([]string{"a"}, nil)
	assert.Equal(t, 6, ec.Pairs)
	assert.Equal(t, []string{"a"}, ec.Symbols)
	assert.Equal(t, time.Second, ec.MatchDelay)
	assert.Equal(t, int64(5), ec.Seed)
}
