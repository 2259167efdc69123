// Package remote fetches image content for the deck from a Parse REST
// backend. Every failure degrades to an empty result.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/peterkuimelis/pairs/internal/game"
)

const (
	DefaultBaseURL = "https://parseapi.back4app.com"
	DefaultTimeout = 10 * time.Second

	landmarkPath = "/classes/Landmark"
	maxBodyBytes = 4 << 20
)

var validate = validator.New()

// landmark matches one Parse object of class Landmark. Parse file fields wrap
// their URL in an object.
type landmark struct {
	ObjectID string `json:"objectId" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Image    struct {
		URL string `json:"url" validate:"required,url"`
	} `json:"image"`
}

// parseResults matches Parse's standard query response.
type parseResults struct {
	Results []landmark `json:"results" validate:"dive"`
}

// Client talks to a Parse server.
type Client struct {
	BaseURL    string
	AppID      string
	APIKey     string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a client with default base URL and timeout.
func NewClient(appID, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL:    DefaultBaseURL,
		AppID:      appID,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Logger:     logger.With("component", "remote"),
	}
}

// FetchLandmarks returns all landmarks (name and image URL). Any failure is
// logged and yields an empty slice.
func (c *Client) FetchLandmarks(ctx context.Context) []game.RemoteItem {
	items, err := c.fetch(ctx)
	if err != nil {
		c.logger().Warn("failed to fetch landmarks", "error", err)
		return nil
	}
	c.logger().Info("fetched landmarks", "count", len(items))
	return items
}

func (c *Client) fetch(ctx context.Context) ([]game.RemoteItem, error) {
	url := strings.TrimRight(c.BaseURL, "/") + landmarkPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Parse-Application-Id", c.AppID)
	req.Header.Set("X-Parse-REST-API-Key", c.APIKey)
	req.Header.Set("Accept", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var results parseResults
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if err := validate.Struct(results); err != nil {
		return nil, fmt.Errorf("invalid landmark: %w", err)
	}

	items := make([]game.RemoteItem, 0, len(results.Results))
	for _, lm := range results.Results {
		items = append(items, game.RemoteItem{
			ID:       lm.ObjectID,
			Name:     lm.Name,
			ImageURL: lm.Image.URL,
		})
	}
	return items, nil
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
