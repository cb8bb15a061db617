// filepath: internal/client/client.go
// Package client talks to the console REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"scmdash/internal/logging"
)

// DefaultTimeout bounds every request unless configured otherwise.
const DefaultTimeout = 10 * time.Second

// Paths the client treats specially.
const (
	loginPath   = "/api/auth/login"
	refreshPath = "/api/auth/refresh-token"
	logoutPath  = "/api/auth/logout"
)

// Config holds the connection settings of the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a thin JSON client over the console API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore

	refreshMu sync.Mutex
}

// New creates a client. A nil store keeps the session in memory.
func New(cfg Config, store SessionStore) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if store == nil {
		store = &MemorySessionStore{}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		store:      store,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Session returns the stored session, or nil.
func (c *Client) Session() (*Session, error) { return c.store.Load() }

// envelope is the success body of every console endpoint.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Do sends one request and decodes the "data" member of the answer into out.
// A 401 triggers one token refresh and one retry.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	session, err := c.store.Load()
	if err != nil {
		logging.Log.Warnf("Ignoring unreadable session: %v", err)
		session = nil
	}

	status, raw, err := c.send(ctx, method, path, query, payload, session)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !isAuthPath(path) {
		session, err = c.refreshAfter(ctx, session)
		if err != nil {
			return err
		}
		if status, raw, err = c.send(ctx, method, path, query, payload, session); err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			c.clearSession()
		}
	}

	if status < 200 || status > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		apiErr := classify(status, eb)
		if status == http.StatusUnauthorized && isAuthPath(path) && eb.Error != "" {
			apiErr.Message = eb.Error
		}
		logging.Log.Debugf("%s %s -> %d: %s", method, path, status, apiErr.Message)
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, session *Session) (int, []byte, error) {
	target := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil && session.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		return 0, nil, networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, networkError(err)
	}
	return resp.StatusCode, raw, nil
}

// refreshAfter renews the tokens once. Concurrent callers that hit a 401 with
// the same stale token share the first caller's refresh.
func (c *Client) refreshAfter(ctx context.Context, stale *Session) (*Session, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current, _ := c.store.Load()
	if current != nil && stale != nil && current.AccessToken != stale.AccessToken {
		return current, nil
	}
	if current == nil || current.RefreshToken == "" {
		return nil, &APIError{Status: http.StatusUnauthorized, Kind: ErrUnauthorized, Message: MsgUnauthorized}
	}

	renewed, err := c.refresh(ctx, current)
	if err != nil {
		logging.Log.Debugf("Token refresh failed: %v", err)
		// A transport failure says nothing about the refresh token.
		if errors.Is(err, ErrNetworkUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		c.clearSession()
		return nil, &APIError{Status: http.StatusUnauthorized, Kind: ErrUnauthorized, Message: MsgUnauthorized, Cause: err}
	}
	return renewed, nil
}

func (c *Client) clearSession() {
	if err := c.store.Clear(); err != nil {
		logging.Log.Warnf("Failed to clear session: %v", err)
	}
}

func isAuthPath(path string) bool {
	return path == loginPath || path == refreshPath
}

// BuildQuery turns filter values into URL query parameters. Slices become
// repeated keys; nil, empty and zero-length values are omitted.
func BuildQuery(params map[string]any) url.Values {
	q := url.Values{}
	for key, value := range params {
		for _, s := range queryStrings(value) {
			if s != "" {
				q.Add(key, s)
			}
		}
	}
	return q
}

func queryStrings(value any) []string {
	if value == nil {
		return nil
	}
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			out = append(out, queryStrings(v.Index(i).Interface())...)
		}
		return out
	case reflect.String:
		return []string{v.String()}
	default:
		return []string{fmt.Sprint(v.Interface())}
	}
}
