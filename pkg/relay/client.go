package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/tidwall/gjson"

	"github.com/germanamz/taskify/pkg/chats/message"
)

// Client calls a relay server.
type Client struct {
	BaseURL string       // Server root, e.g. "http://localhost:5000".
	HTTP    *http.Client // Falls back to http.DefaultClient.
}

// NewClient creates a Client for the relay at baseURL.
func NewClient(baseURL string, hc *http.Client) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: hc}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// Chat posts the conversation and returns the envelope. A relay failure is
// returned as a *ResponseError.
func (c *Client) Chat(ctx context.Context, turns []message.Message) (Envelope, error) {
	body, err := json.Marshal(ChatRequest{Messages: nonNil(turns)})
	if err != nil {
		return Envelope{}, fmt.Errorf("relay: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return Envelope{}, fmt.Errorf("relay: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var env Envelope
	if err := c.do(req, &env); err != nil {
		return Envelope{}, err
	}

	return env, nil
}

// Models returns the candidate table of the relay.
func (c *Client) Models(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/models", nil)
	if err != nil {
		return nil, fmt.Errorf("relay: create request: %w", err)
	}

	var out struct {
		Models []ModelInfo `json:"models"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	return out.Models, nil
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // body is fully read

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("relay: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		re := &ResponseError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, &re.Body); err != nil || re.Body.Error == "" {
			re.Body = ErrorBody{Error: http.StatusText(resp.StatusCode), Message: strings.TrimSpace(string(data))}
		}
		return re
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("relay: decode response: %w", err)
	}

	return nil
}

// Stream is a WebSocket chat session. Calls to Send must not overlap.
type Stream struct {
	conn *websocket.Conn
}

// DialChat opens a WebSocket chat session.
func (c *Client) DialChat(ctx context.Context) (*Stream, error) {
	u := c.BaseURL + "/api/chat/ws"
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}

	conn, resp, err := websocket.Dial(ctx, u, &websocket.DialOptions{HTTPClient: c.HTTP})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("relay: dial: %w", err)
	}

	return &Stream{conn: conn}, nil
}

// Send writes one request frame and waits for its reply frame.
func (s *Stream) Send(ctx context.Context, turns []message.Message) (Envelope, error) {
	if err := wsjson.Write(ctx, s.conn, ChatRequest{Messages: nonNil(turns)}); err != nil {
		return Envelope{}, fmt.Errorf("relay: write frame: %w", err)
	}

	_, data, err := s.conn.Read(ctx)
	if err != nil {
		return Envelope{}, fmt.Errorf("relay: read frame: %w", err)
	}

	if gjson.GetBytes(data, "error").Exists() {
		var body ErrorBody
		if err := json.Unmarshal(data, &body); err != nil {
			return Envelope{}, fmt.Errorf("relay: decode frame: %w", err)
		}
		return Envelope{}, &ResponseError{Body: body}
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("relay: decode frame: %w", err)
	}

	return env, nil
}

// Close ends the session with a normal closure.
func (s *Stream) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}

func nonNil(turns []message.Message) []message.Message {
	if turns == nil {
		return []message.Message{}
	}
	return turns
}
