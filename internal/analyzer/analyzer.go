// Package analyzer talks to an external blueprint-authoring endpoint:
// a service that turns a prose description into a blueprint document.
// The whole package is optional; without an endpoint the daemon leans
// on the built-in template matcher instead.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"mason.gg/internal/blueprint"
)

// ErrUnavailable is returned by a nil client.
var ErrUnavailable = errors.New("analyzer not configured")

const maxResponseBytes = 4 << 20

// Request is the payload POSTed to the authoring endpoint.
type Request struct {
	Description   string    `json:"description"`
	Footprint     Footprint `json:"footprint"`
	PaletteDigest string    `json:"palette_digest"`
}

// Footprint suggests a working area to the authoring service.
type Footprint struct {
	Width int `json:"width"`
	Depth int `json:"depth"`
}

// Config carries the connection knobs. Endpoint empty means disabled.
type Config struct {
	Endpoint      string
	APIKey        string
	Timeout       time.Duration
	MaxRetries    int
	Width         int
	Depth         int
	PaletteDigest string
}

// Client posts descriptions and returns schema-checked blueprints.
// A nil *Client is valid and reports ErrUnavailable.
type Client struct {
	endpoint  string
	apiKey    string
	footprint Footprint
	digest    string
	httpc     *http.Client
	logger    *log.Logger
}

// New builds a client, or nil when cfg.Endpoint is empty.
func New(cfg Config, logger *log.Logger) *Client {
	if cfg.Endpoint == "" {
		return nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Width <= 0 {
		cfg.Width = 16
	}
	if cfg.Depth <= 0 {
		cfg.Depth = 16
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 8 * time.Second
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = nil
	return &Client{
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		footprint: Footprint{Width: cfg.Width, Depth: cfg.Depth},
		digest:    cfg.PaletteDigest,
		httpc:     rc.StandardClient(),
		logger:    logger,
	}
}

// Available reports whether the endpoint is configured.
func (c *Client) Available() bool { return c != nil }

// Describe sends the description and returns the authored blueprint.
func (c *Client) Describe(ctx context.Context, description string) (*blueprint.Blueprint, error) {
	if c == nil {
		return nil, ErrUnavailable
	}
	body, err := json.Marshal(Request{
		Description:   description,
		Footprint:     c.footprint,
		PaletteDigest: c.digest,
	})
	if err != nil {
		return nil, fmt.Errorf("analyzer request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("analyzer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyzer post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("analyzer status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("analyzer read: %w", err)
	}
	bp, err := blueprint.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("analyzer blueprint: %w", err)
	}
	c.printf("analyzer blueprint elements=%d desc_len=%d", len(bp.Elements), len(description))
	return bp, nil
}

func (c *Client) printf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
