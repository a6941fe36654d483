// Package hardcover executes named GraphQL operations against the Hardcover.app API.
package hardcover

import (
	"bytes"
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/listenupapp/hardcover-sync/internal/ratelimit"
)

const (
	// DefaultEndpoint is the public GraphQL endpoint.
	DefaultEndpoint = "https://api.hardcover.app/v1/graphql"

	// Hardcover allows 60 requests per minute per token.
	defaultRequestsPerMinute = 60
	defaultBurst             = 5

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "hardcover-sync/1.0"

	// maxErrorBody caps how much of a non-JSON error body ends up in a message.
	maxErrorBody = 512
)

// Executor runs one named operation and decodes its data into out.
type Executor interface {
	Execute(ctx context.Context, op Operation, variables any, out any) error
}

// Config configures a Client.
type Config struct {
	Endpoint string
	// Authorization is sent verbatim in the authorization header.
	Authorization     string
	UserAgent         string
	RequestsPerMinute int
	Timeout           time.Duration
}

// Client is a rate-limited Hardcover.app GraphQL client.
type Client struct {
	http          *http.Client
	limiter       *ratelimit.HostLimiter
	logger        *slog.Logger
	endpoint      string
	host          string
	authorization string
	userAgent     string
}

// New creates a new Hardcover.app client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}

	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", cfg.Endpoint)
	}

	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:       ratelimit.PerMinute(cfg.RequestsPerMinute, defaultBurst),
		logger:        logger,
		endpoint:      cfg.Endpoint,
		host:          u.Host,
		authorization: cfg.Authorization,
		userAgent:     cfg.UserAgent,
	}, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

type request struct {
	Query         string `json:"query"`
	OperationName string `json:"operationName"`
	Variables     any    `json:"variables,omitzero"`
}

type response struct {
	Data   jsontext.Value `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute sends op with variables and decodes the response data into out.
// Service-reported errors become a *RemoteError carrying every message.
// out may be nil when the caller only cares about success.
func (c *Client) Execute(ctx context.Context, op Operation, variables any, out any) error {
	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return wrapError(op, 0, fmt.Errorf("rate limit wait: %w", err))
	}

	payload, err := json.Marshal(request{
		Query:         op.Query,
		OperationName: op.Name,
		Variables:     variables,
	})
	if err != nil {
		return wrapError(op, 0, fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return wrapError(op, 0, fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.authorization != "" {
		req.Header.Set("authorization", c.authorization)
	}

	c.logger.Debug("hardcover request", "op", op.Name)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(op, 0, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(op, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("hardcover response",
		"op", op.Name,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	var envelope response
	decodeErr := json.Unmarshal(body, &envelope)

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return &RemoteError{Op: op.Name, Status: statusIfFailed(resp.StatusCode), Messages: messages}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return wrapError(op, resp.StatusCode, ErrUnauthorized)
	case resp.StatusCode == http.StatusTooManyRequests:
		return wrapError(op, resp.StatusCode, ErrRateLimited)
	case resp.StatusCode >= 500:
		return wrapError(op, resp.StatusCode, ErrServer)
	case resp.StatusCode != http.StatusOK:
		return wrapError(op, resp.StatusCode, fmt.Errorf("unexpected status: %s", truncate(body)))
	}

	if decodeErr != nil {
		return wrapError(op, 0, fmt.Errorf("decode response: %w", decodeErr))
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return wrapError(op, 0, ErrNoData)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return wrapError(op, 0, fmt.Errorf("decode %s data: %w", op.Name, err))
	}
	return nil
}

func statusIfFailed(status int) int {
	if status == http.StatusOK {
		return 0
	}
	return status
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
