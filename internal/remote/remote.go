package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DoyleJ11/marathon-draft/internal/state"
)

// Source is the remote data endpoint as seen by the state manager.
type Source interface {
	FetchGameState(ctx context.Context, gameID string) (state.GamePatch, error)
	FetchResults(ctx context.Context, gameID string) (map[string]string, error)
	PushResults(ctx context.Context, gameID string, results map[string]string) error
	PushGameState(ctx context.Context, gameID string, patch state.GamePatch) error
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

const (
	GameStatePath = "/api/game-state"
	ResultsPath   = "/api/results"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

var _ Source = (*HTTPClient)(nil)

// NewHTTPClient talks to the endpoint rooted at baseURL. A nil client gets
// one with the given timeout.
func NewHTTPClient(baseURL string, client *http.Client, timeout time.Duration) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: client}
}

func (c *HTTPClient) FetchGameState(ctx context.Context, gameID string) (state.GamePatch, error) {
	var p state.GamePatch
	if err := c.do(ctx, http.MethodGet, GameStatePath, gameID, nil, &p); err != nil {
		return state.GamePatch{}, err
	}
	return p, nil
}

func (c *HTTPClient) PushGameState(ctx context.Context, gameID string, patch state.GamePatch) error {
	return c.do(ctx, http.MethodPost, GameStatePath, gameID, patch, nil)
}

type resultsBody struct {
	Results map[string]string `json:"results"`
}

func (c *HTTPClient) FetchResults(ctx context.Context, gameID string) (map[string]string, error) {
	var body resultsBody
	if err := c.do(ctx, http.MethodGet, ResultsPath, gameID, nil, &body); err != nil {
		return nil, err
	}
	if body.Results == nil {
		body.Results = map[string]string{}
	}
	return body.Results, nil
}

func (c *HTTPClient) PushResults(ctx context.Context, gameID string, results map[string]string) error {
	return c.do(ctx, http.MethodPost, ResultsPath, gameID, resultsBody{Results: results}, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path, gameID string, in, out any) error {
	u := c.baseURL + path + "?gameId=" + url.QueryEscape(gameID)

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}
