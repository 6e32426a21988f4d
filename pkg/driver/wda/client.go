package wda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/logger"
	"github.com/devicelab-dev/wdakit/pkg/wait"
)

// DefaultURL is where WebDriverAgent listens when forwarded with iproxy.
const DefaultURL = "http://127.0.0.1:8100"

// Error is a WDA protocol error ({"value": {"error": ..., "message": ...}}).
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" && e.Message != e.Code {
		return fmt.Sprintf("WDA error: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("WDA error: %s", e.Code)
}

// Client is an HTTP client for WebDriverAgent.
//
// A Client holds at most one session. It is not safe for concurrent use;
// callers driving one device from several goroutines must serialize access.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

// NewClient creates a new WDA client for the server at baseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// BaseURL returns the server URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status returns WDA status.
func (c *Client) Status(ctx context.Context) (map[string]interface{}, error) {
	return c.get(ctx, "/status")
}

// WaitReady polls /status until WDA answers or timeout elapses.
func (c *Client) WaitReady(ctx context.Context, timeout time.Duration) error {
	probe := func(ctx context.Context) (bool, error) {
		if _, err := c.Status(ctx); err != nil {
			logger.Debug("WDA %s not ready: %v", c.baseURL, err)
			return false, nil
		}
		return true, nil
	}
	if err := wait.New(wait.WithInterval(time.Second)).Until(ctx, probe, timeout); err != nil {
		return core.ErrServerUnreachable.WithMessagef("WDA at %s not ready after %v", c.baseURL, timeout).WithCause(err)
	}
	return nil
}

// Session management

// CreateSession creates a new WDA session, launching bundleID when set.
func (c *Client) CreateSession(ctx context.Context, bundleID string) error {
	alwaysMatch := map[string]interface{}{}
	if bundleID != "" {
		alwaysMatch["bundleId"] = bundleID
	}
	caps := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": alwaysMatch,
		},
	}

	resp, err := c.post(ctx, "/session", caps)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	// Extract session ID
	if value, ok := resp["value"].(map[string]interface{}); ok {
		if sessionID, ok := value["sessionId"].(string); ok {
			c.sessionID = sessionID
		}
	}
	if c.sessionID == "" {
		if sessionID, ok := resp["sessionId"].(string); ok {
			c.sessionID = sessionID
		}
	}
	if c.sessionID == "" {
		return fmt.Errorf("failed to create session: no session id in response")
	}

	logger.Info("WDA session %s created for %s", c.sessionID, bundleID)
	return nil
}

// DeleteSession ends the current session.
func (c *Client) DeleteSession(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	_, err := c.delete(ctx, fmt.Sprintf("/session/%s", c.sessionID))
	logger.Info("WDA session %s closed", c.sessionID)
	c.sessionID = ""
	return err
}

// HasSession returns true if a session is active.
func (c *Client) HasSession() bool {
	return c.sessionID != ""
}

// SessionID returns the current session ID.
func (c *Client) SessionID() string {
	return c.sessionID
}

// App management

// ActivateApp brings an app to foreground, launching it if needed.
func (c *Client) ActivateApp(ctx context.Context, bundleID string) error {
	_, err := c.post(ctx, c.sessionPath("/wda/apps/activate"), map[string]interface{}{
		"bundleId": bundleID,
	})
	return err
}

// TerminateApp terminates an app by bundle ID.
func (c *Client) TerminateApp(ctx context.Context, bundleID string) error {
	_, err := c.post(ctx, c.sessionPath("/wda/apps/terminate"), map[string]interface{}{
		"bundleId": bundleID,
	})
	return err
}

// Device control

// Home presses the home button.
func (c *Client) Home(ctx context.Context) error {
	_, err := c.post(ctx, "/wda/homescreen", nil)
	return err
}

// WindowSize returns the screen dimensions.
func (c *Client) WindowSize(ctx context.Context) (core.Size, error) {
	resp, err := c.get(ctx, c.sessionPath("/window/size"))
	if err != nil {
		return core.Size{}, err
	}

	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return core.Size{}, fmt.Errorf("invalid window size response")
	}
	var size core.Size
	if w, ok := value["width"].(float64); ok {
		size.Width = int(w)
	}
	if h, ok := value["height"].(float64); ok {
		size.Height = int(h)
	}
	return size, nil
}

// Touch actions

// Tap performs a tap at coordinates.
func (c *Client) Tap(ctx context.Context, x, y int) error {
	_, err := c.post(ctx, c.sessionPath("/wda/tap"), map[string]interface{}{
		"x": x,
		"y": y,
	})
	return err
}

// TouchAndHold presses at coordinates for duration.
func (c *Client) TouchAndHold(ctx context.Context, x, y int, duration time.Duration) error {
	_, err := c.post(ctx, c.sessionPath("/wda/touchAndHold"), map[string]interface{}{
		"x":        x,
		"y":        y,
		"duration": duration.Seconds(),
	})
	return err
}

// Swipe drags from one point to another over duration.
func (c *Client) Swipe(ctx context.Context, from, to core.Point, duration time.Duration) error {
	_, err := c.post(ctx, c.sessionPath("/wda/dragfromtoforduration"), map[string]interface{}{
		"fromX":    from.X,
		"fromY":    from.Y,
		"toX":      to.X,
		"toY":      to.Y,
		"duration": duration.Seconds(),
	})
	return err
}

// TouchPerform posts a touch action chain to /wda/touch/perform and returns
// the raw "value" of the response.
func (c *Client) TouchPerform(ctx context.Context, body interface{}) (interface{}, error) {
	resp, err := c.post(ctx, c.sessionPath("/wda/touch/perform"), body)
	if err != nil {
		return nil, err
	}
	return resp["value"], nil
}

// PerformActions posts a W3C action sequence to /actions and returns the raw
// "value" of the response.
func (c *Client) PerformActions(ctx context.Context, body interface{}) (interface{}, error) {
	resp, err := c.post(ctx, c.sessionPath("/actions"), body)
	if err != nil {
		return nil, err
	}
	return resp["value"], nil
}

// HTTP helpers

func (c *Client) sessionPath(path string) string {
	if c.sessionID != "" {
		return fmt.Sprintf("/session/%s%s", c.sessionID, path)
	}
	return path
}

func (c *Client) get(ctx context.Context, path string) (map[string]interface{}, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (map[string]interface{}, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader([]byte("{}"))
	}
	return c.do(ctx, http.MethodPost, path, reqBody)
}

func (c *Client) delete(ctx context.Context, path string) (map[string]interface{}, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("WDA %s %s", method, path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.ErrServerUnreachable.WithCause(err)
	}
	defer resp.Body.Close()
	return c.parseResponse(resp)
}

func (c *Client) parseResponse(resp *http.Response) (map[string]interface{}, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w (body: %s)", err, string(body))
	}

	// Check for WDA error
	if value, ok := result["value"].(map[string]interface{}); ok {
		if errCode, ok := value["error"].(string); ok {
			message := errCode
			if msg, ok := value["message"].(string); ok {
				message = msg
			}
			if errCode == "no such element" {
				return nil, core.ErrElementNotFound.WithMessage(message)
			}
			return nil, &Error{StatusCode: resp.StatusCode, Code: errCode, Message: message}
		}
	}

	return result, nil
}
