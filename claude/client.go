package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	writecraft "github.com/writecraft/writecraft-go"
	"github.com/writecraft/writecraft-go/keychain"
)

const (
	// DefaultAPIURL is the Anthropic Messages endpoint.
	DefaultAPIURL = "https://api.anthropic.com/v1/messages"

	// DefaultModel is the model used when a request does not name one.
	DefaultModel = "claude-haiku-4-5-20251001"

	apiVersion       = "2023-06-01"
	defaultMaxTokens = 4096
)

// Client talks to the Anthropic Messages API and decodes its SSE
// replies incrementally. Each call owns its own stream state, so a
// Client is safe for concurrent use.
type Client struct {
	apiURL     string
	model      string
	maxTokens  int
	httpClient *http.Client
	creds      keychain.Store
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIURL overrides the Messages endpoint, e.g. for a test server.
func WithAPIURL(url string) Option {
	return func(c *Client) { c.apiURL = url }
}

// WithModel sets the default model for requests that do not name one.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens sets the default max_tokens for requests.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the structured logger used by the decode pipeline.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client that resolves its API key through creds
// on every call, so a key stored after construction is picked up.
func NewClient(creds keychain.Store, opts ...Option) *Client {
	c := &Client{
		apiURL:     DefaultAPIURL,
		model:      DefaultModel,
		maxTokens:  defaultMaxTokens,
		httpClient: &http.Client{},
		creds:      creds,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendMessage sends a conversation and streams back a plain text reply.
// Tool definitions on the request are ignored; use SendMessageWithTools
// when the model should be able to invoke tools.
func (c *Client) SendMessage(ctx context.Context, req Request, sink writecraft.Sink) (string, error) {
	req.Tools = nil
	resp, err := c.send(ctx, req, sink)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// SendMessageWithTools sends a conversation with tool definitions and
// returns the full assembled response, including any completed tool
// calls and the resolved stop reason.
func (c *Client) SendMessageWithTools(ctx context.Context, req Request, sink writecraft.Sink) (*writecraft.AssistantResponse, error) {
	return c.send(ctx, req, sink)
}

func (c *Client) send(ctx context.Context, req Request, sink writecraft.Sink) (*writecraft.AssistantResponse, error) {
	key, err := c.apiKey()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("x-api-key", key)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &writecraft.NetworkError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeStatusError(resp)
	}

	return decodeStream(ctx, resp.Body, sink, c.logger)
}

func (c *Client) apiKey() (string, error) {
	if c.creds == nil {
		return "", writecraft.ErrNoAPIKey
	}
	key, err := c.creds.Get(keychain.APIKeyAccount)
	if errors.Is(err, keychain.ErrNotFound) {
		return "", writecraft.ErrNoAPIKey
	}
	if err != nil {
		return "", fmt.Errorf("read API key: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return "", writecraft.ErrNoAPIKey
	}
	return key, nil
}

// decodeStatusError maps a non-success HTTP status onto the error
// taxonomy. 401 carries a canonical message and wraps ErrInvalidAPIKey;
// 429 keeps the server's text and wraps ErrRateLimited so callers can
// drive backoff; 5xx is marked retryable.
func decodeStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(raw))
	if m := gjson.GetBytes(raw, "error.message"); m.Exists() {
		msg = m.String()
	}
	errType := gjson.GetBytes(raw, "error.type").String()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &writecraft.APIError{
			StatusCode: resp.StatusCode,
			Type:       errType,
			Message:    "Invalid API key",
			Err:        writecraft.ErrInvalidAPIKey,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &writecraft.APIError{
			StatusCode: resp.StatusCode,
			Type:       errType,
			Message:    msg,
			Retryable:  true,
			Err:        writecraft.ErrRateLimited,
		}
	case resp.StatusCode >= 500:
		return &writecraft.APIError{
			StatusCode: resp.StatusCode,
			Type:       errType,
			Message:    msg,
			Retryable:  true,
		}
	default:
		return &writecraft.APIError{
			StatusCode: resp.StatusCode,
			Type:       errType,
			Message:    msg,
		}
	}
}

// decodeStream consumes the SSE body and assembles the final response.
// EOF before a message_stop event is treated as normal completion; any
// bytes buffered after message_stop are discarded.
func decodeStream(ctx context.Context, body io.Reader, sink writecraft.Sink, logger *slog.Logger) (*writecraft.AssistantResponse, error) {
	split := &frameSplitter{}
	asm := newAssembler(sink, logger)
	buf := make([]byte, 4096)

	for !asm.done {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := body.Read(buf)
		if n > 0 {
			for _, payload := range split.push(buf[:n]) {
				ev, ok := decodeEvent(payload)
				if !ok {
					logger.Debug("dropping undecodable frame", "payload", payload)
					continue
				}
				if herr := asm.handle(ev); herr != nil {
					return nil, herr
				}
				if asm.done {
					break
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &writecraft.NetworkError{Op: "read stream", Err: err}
		}
	}

	return asm.response(), nil
}
