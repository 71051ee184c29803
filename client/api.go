package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wfunc/rpsserver/models"
)

// APIError is a non-2xx reply. The server sends its message as a JSON string.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// APIClient talks to the game server's REST endpoints on behalf of one user.
type APIClient struct {
	baseURL    string
	header     string
	userID     int64
	httpClient *http.Client
}

func NewAPIClient(baseURL, header string, userID int64) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		header:     header,
		userID:     userID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *APIClient) ListGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	err := c.do(ctx, http.MethodGet, "/games", nil, &games)
	return games, err
}

func (c *APIClient) CreateGame(ctx context.Context) (*models.Game, error) {
	var g models.Game
	if err := c.do(ctx, http.MethodPost, "/games", nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *APIClient) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	var g models.Game
	if err := c.do(ctx, http.MethodGet, gamePath(id), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *APIClient) Invite(ctx context.Context, id, opponentID int64) (*models.Game, error) {
	var g models.Game
	path := gamePath(id) + "/add/" + strconv.FormatInt(opponentID, 10)
	if err := c.do(ctx, http.MethodPatch, path, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *APIClient) Play(ctx context.Context, id int64, choice string) (*models.Game, error) {
	var g models.Game
	body := map[string]string{"choice": choice}
	if err := c.do(ctx, http.MethodPatch, gamePath(id), body, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *APIClient) DeleteGame(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, gamePath(id), nil, nil)
}

// WebSocketURL maps the base URL onto the /ws endpoint.
func (c *APIClient) WebSocketURL() (string, error) {
	u, err := url.Parse(c.baseURL + "/ws")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	return u.String(), nil
}

// AuthHeader returns the identity header sent with every request.
func (c *APIClient) AuthHeader() http.Header {
	h := http.Header{}
	if c.userID > 0 {
		h.Set(c.header, strconv.FormatInt(c.userID, 10))
	}
	return h
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	for k, v := range c.AuthHeader() {
		req.Header[k] = v
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr.Message) != nil {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func gamePath(id int64) string {
	return "/game/" + strconv.FormatInt(id, 10)
}
