// Package meta is the Meta Graph API collaborator used by the moderation
// executors. API-level rejection (non-2xx) surfaces as a boolean false,
// transport failure as an error; callers map both to the same failed
// terminal state but the two channels stay distinguishable.
package meta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// CommentActions is the platform-action boundary consumed by the reply and
// hide executors.
type CommentActions interface {
	ReplyToComment(ctx context.Context, commentID, message string) (bool, error)
	HideComment(ctx context.Context, commentID string) (bool, error)
}

// Client talks to the Meta Graph API.
type Client struct {
	config     *Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// ClientOption allows for customization of the client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Meta Graph API client.
func NewClient(config *Config, opts ...ClientOption) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := rate.Every(config.RateWindow / time.Duration(config.RateLimit))
	client := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		limiter:    rate.NewLimiter(r, 1),
		logger:     config.Logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// postForm sends a form-encoded POST to the given Graph endpoint. The bool
// result reports API acceptance; an error means the request never completed.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limiter wait canceled: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
	}

	form.Set("access_token", c.config.AccessToken)
	fullURL := c.config.BaseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	c.logger.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"endpoint":    endpoint,
		"body":        string(body),
	}).Error("Meta API rejected request")

	return false, nil
}
