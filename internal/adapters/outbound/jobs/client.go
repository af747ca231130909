// Package jobs implements domain.JobTracker against a REST session API
// authenticated with an API key header.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/prfix/prfix/internal/domain"
)

// APIKeyEnv names the environment variable holding the session API key.
const APIKeyEnv = "JULES_API_KEY"

// ErrNoAPIKey is returned by NewFromEnv when the key is not set.
var ErrNoAPIKey = errors.New(APIKeyEnv + " is not set")

// Client polls sessions at {Base}/sessions/{id}.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
}

func New(base, apiKey string) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// NewFromEnv reads the API key from the environment.
func NewFromEnv(base string) (*Client, error) {
	key := os.Getenv(APIKeyEnv)
	if key == "" {
		return nil, ErrNoAPIKey
	}
	return New(base, key), nil
}

type sessionResponse struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	State string `json:"state"`
}

type activitiesResponse struct {
	Activities []domain.JobActivity `json:"activities"`
}

func (c *Client) Status(ctx context.Context, sessionID string) (domain.JobStatus, error) {
	var resp sessionResponse
	if err := c.get(ctx, "session status", "/sessions/"+url.PathEscape(sessionID), &resp); err != nil {
		return domain.JobStatus{}, err
	}
	id := resp.ID
	if id == "" {
		id = sessionID
	}
	return domain.JobStatus{ID: id, State: resp.State}, nil
}

func (c *Client) Activities(ctx context.Context, sessionID string) ([]domain.JobActivity, error) {
	var resp activitiesResponse
	if err := c.get(ctx, "session activities", "/sessions/"+url.PathEscape(sessionID)+"/activities", &resp); err != nil {
		return nil, err
	}
	if resp.Activities == nil {
		return []domain.JobActivity{}, nil
	}
	return resp.Activities, nil
}

func (c *Client) get(ctx context.Context, op, path string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return domain.NewTransportError(op, err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return domain.NewTransportError(op, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return domain.NewTransportError(op, fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(body))))
	}
	if err := json.NewDecoder(res.Body).Decode(into); err != nil {
		return domain.NewTransportError(op, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
