// Package discord provides the Discord REST client used by the agent loops
package discord

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

	"go.uber.org/zap"

	"github.com/gliderlab/autochat/gateway/channels/types"
	"github.com/gliderlab/autochat/pkg/logging"
)

const (
	DefaultBaseURL = "https://discord.com/api/v9"
	DefaultTimeout = 30 * time.Second
)

// APIError is returned for any non-2xx response
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Channel talks to a single Discord account over the REST API. The token is
// sent verbatim in the Authorization header; user tokens have no prefix and
// bot tokens carry their own "Bot " prefix.
type Channel struct {
	token   string
	baseURL string
	limit   int
	client  *http.Client
	logger  *zap.Logger
}

// Option configures a Channel
type Option func(*Channel)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(c *Channel) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Channel) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithFetchLimit sets the ?limit= query on message fetches. Zero leaves it
// to the server default.
func WithFetchLimit(n int) Option { return func(c *Channel) { c.limit = n } }

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option { return func(c *Channel) { c.logger = logging.OrNop(l) } }

// NewChannel creates a new Discord client
func NewChannel(token string, opts ...Option) *Channel {
	c := &Channel{
		token:   token,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "discord"))
	return c
}

// FetchIdentity returns the ID of the account the token belongs to.
func (c *Channel) FetchIdentity(ctx context.Context) (string, error) {
	var u types.User
	if err := c.do(ctx, http.MethodGet, "/users/@me", nil, &u); err != nil {
		return "", fmt.Errorf("fetch identity: %w", err)
	}
	if u.ID == "" {
		return "", fmt.Errorf("fetch identity: empty user id")
	}
	c.logger.Debug("identity resolved", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return u.ID, nil
}

// FetchLatestMessages returns the channel's recent messages, newest first.
func (c *Channel) FetchLatestMessages(ctx context.Context, channelID string) ([]types.Message, error) {
	path := "/channels/" + url.PathEscape(channelID) + "/messages"
	if c.limit > 0 {
		path += "?limit=" + strconv.Itoa(c.limit)
	}
	var msgs []types.Message
	if err := c.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	return msgs, nil
}

// PostMessage posts text to the channel. A non-empty replyToID turns the post
// into a reply to that message.
func (c *Channel) PostMessage(ctx context.Context, channelID, text, replyToID string) error {
	req := types.SendMessageRequest{Content: text}
	if replyToID != "" {
		req.MessageReference = &types.MessageReference{MessageID: replyToID}
	}
	var created types.SendMessageResponse
	path := "/channels/" + url.PathEscape(channelID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, req, &created); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	c.logger.Debug("message posted", zap.String("message_id", created.ID), zap.String("reply_to", replyToID))
	return nil
}

func (c *Channel) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, types.MaxErrorBodyBytes))
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
