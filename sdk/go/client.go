package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"make24/core"
)

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the make24 HTTP + WebSocket API. The quiz
// session lives in a cookie, so the underlying http.Client keeps a cookie jar:
// the challenge fetched by NewQuiz is the one consumed by SubmitAnswer.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	headers    http.Header
}

// NewClient constructs a new SDK client targeting the given baseURL (e.g., http://localhost:8080/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    baseURL,
		wsURL:      deriveWSURL(baseURL),
		httpClient: &http.Client{Jar: jar},
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client. Supply one with a cookie jar or
// session continuity between NewQuiz and SubmitAnswer is lost.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeader sets an arbitrary header applied to HTTP and WS calls.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

// Register creates a new account and returns its id.
func (c *Client) Register(ctx context.Context, username, password string) (int64, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return 0, ErrEmptyCredentials
	}
	resp, err := c.postJSON(ctx, "/register", map[string]string{"username": username, "password": password})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var body struct {
		UserID int64 `json:"userId"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return 0, err
	}
	return body.UserID, nil
}

// Login authenticates and binds the username to the cookie session. Later
// correct answers are scored under this name.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrEmptyCredentials
	}
	resp, err := c.postJSON(ctx, "/login", map[string]string{"username": username, "password": password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	return decodeJSON(resp, &body)
}

// NewQuiz fetches a fresh challenge: four numbers to combine into 24.
func (c *Client) NewQuiz(ctx context.Context) ([]int, error) {
	resp, err := c.get(ctx, "/quiz")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Numbers []int `json:"numbers"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, err
	}
	return body.Numbers, nil
}

// SubmitAnswer submits an arithmetic expression against the session's
// challenge and returns the verdict.
func (c *Client) SubmitAnswer(ctx context.Context, expression string) (AnswerResult, error) {
	resp, err := c.postJSON(ctx, "/answer", map[string]string{"answer": expression})
	if err != nil {
		return AnswerResult{}, err
	}
	defer resp.Body.Close()

	var body AnswerResult
	if err := decodeJSON(resp, &body); err != nil {
		return AnswerResult{}, err
	}
	return body, nil
}

// Leaderboard fetches the current top scores, highest first.
func (c *Client) Leaderboard(ctx context.Context) ([]Entry, error) {
	resp, err := c.get(ctx, "/leaderboard")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Leaderboard []Entry `json:"leaderboard"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, err
	}
	return body.Leaderboard, nil
}

// Health probes /healthz.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	resp, err := c.get(ctx, "/healthz")
	if err != nil {
		return HealthStatus{}, err
	}
	defer resp.Body.Close()

	var hs HealthStatus
	if err := decodeJSON(resp, &hs); err != nil {
		return HealthStatus{}, err
	}
	return hs, nil
}

// SubscribeEvents connects to the WebSocket stream and emits score_update
// events. The returned channel closes when ctx is done or the connection drops.
func (c *Client) SubscribeEvents(ctx context.Context) (<-chan core.Event, error) {
	if c.wsURL == "" {
		return nil, errors.New("wsURL is not set; ensure baseURL is http/https")
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
		Jar:              c.httpClient.Jar,
	}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, c.headers)
	if err != nil {
		return nil, err
	}

	out := make(chan core.Event, 32)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				var evt core.Event
				if err := conn.ReadJSON(&evt); err != nil {
					return
				}
				select {
				case out <- evt:
				default:
					// drop if consumer is slow
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.applyHeaders(req)
	return c.httpClient.Do(req)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyHeaders(req)
	return c.httpClient.Do(req)
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
}

func deriveWSURL(httpBase string) string {
	u, err := url.Parse(httpBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		// leave as-is for custom schemes
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
