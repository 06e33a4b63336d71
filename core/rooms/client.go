// Package rooms is a thin client for the media room control plane. Sessions
// use it to tear rooms down once a conversation ends, which disconnects
// every remaining participant.
package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
)

const defaultRequestTimeout = 10 * time.Second

// Client talks to the room control plane over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, for tests or custom
// transports.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient builds a room control plane client for the given base URL.
func NewClient(baseURL, apiKey string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("rooms base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid rooms base URL: %w", err)
	}

	client := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultRequestTimeout,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewClientFromEnv builds a client from ROOMS_URL and ROOMS_API_KEY.
func NewClientFromEnv(opts ...ClientOption) (*Client, error) {
	baseURL := os.Getenv("ROOMS_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("ROOMS_URL is not set")
	}
	return NewClient(baseURL, os.Getenv("ROOMS_API_KEY"), opts...)
}

// Room describes one active room on the control plane.
type Room struct {
	Name            string `json:"name"`
	NumParticipants int    `json:"num_participants"`
	CreatedAt       int64  `json:"created_at"`
}

// DeleteRoom removes a room, disconnecting all of its participants. Deleting
// a room that no longer exists is not an error; shutdown paths retry and the
// frontend may have torn the room down first.
func (c *Client) DeleteRoom(ctx context.Context, name string) error {
	ctx, span := tracer.Start(ctx, "rooms.delete")
	defer span.End()

	if name == "" {
		return fmt.Errorf("room name is required")
	}

	resp, err := c.do(ctx, http.MethodDelete, "/rooms/"+url.PathEscape(name), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete room")
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		logger.Debug("room already gone", "room", name)
		return nil
	case resp.StatusCode >= 300:
		err := fmt.Errorf("failed to delete room %q: %s", name, resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete room")
		return err
	}

	logger.Info("deleted room", "room", name)
	return nil
}

// ListRooms returns the currently active rooms.
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	ctx, span := tracer.Start(ctx, "rooms.list")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, "/rooms", nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list rooms")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("failed to list rooms: %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list rooms")
		return nil, err
	}

	var rooms []Room
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode rooms")
		return nil, fmt.Errorf("failed to decode rooms response: %w", err)
	}
	return rooms, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	return resp, nil
}
