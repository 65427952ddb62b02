package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	headerTotalCount    = "x-total-count"
)

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// TokenSource resolves the bearer token for a request; empty means anonymous.
type TokenSource interface {
	Token(ctx context.Context) string
}

// request describes one call; body is sent verbatim with contentType.
type request struct {
	method      string
	path        string
	body        []byte
	contentType string
}

// response is the raw outcome of a round trip.
type response struct {
	status    int
	body      []byte
	header    http.Header
	requestID string
}

// BaseClient performs requests against the API base URL.
type BaseClient struct {
	baseURL string
	client  HTTPDoer
	tokens  TokenSource
	logger  *zap.Logger
}

// NewBaseClient builds client with base URL.
func NewBaseClient(baseURL string, client HTTPDoer, tokens TokenSource, logger *zap.Logger) *BaseClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		tokens:  tokens,
		logger:  logger,
	}
}

// BaseURL returns the normalised API root.
func (c *BaseClient) BaseURL() string {
	return c.baseURL
}

// AbsoluteURL prefixes rooted paths with the base URL and leaves anything else untouched.
func (c *BaseClient) AbsoluteURL(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return path
}

func (c *BaseClient) do(ctx context.Context, r request) (*response, error) {
	var reader io.Reader
	if r.body != nil {
		reader = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.AbsoluteURL(r.path), reader)
	if err != nil {
		return nil, fmt.Errorf("clients: build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		contentType := r.contentType
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set(headerAuthorization, token)
		}
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("clients: %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("clients: read %s %s: %w", r.method, r.path, err)
	}

	c.logger.Debug("request done",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
		zap.String("request_id", requestID),
	)

	return &response{
		status:    resp.StatusCode,
		body:      body,
		header:    resp.Header,
		requestID: requestID,
	}, nil
}

// doEnvelope runs the request and decodes the envelope. Non-2xx responses
// whose body is an envelope are returned as-is; anything else becomes an error.
func doEnvelope[T any](ctx context.Context, c *BaseClient, r request) (*Envelope[T], error) {
	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}

	env, decodeErr := decodeEnvelope[T](resp.body)
	if decodeErr != nil {
		if resp.status >= http.StatusBadRequest {
			return nil, &HTTPError{StatusCode: resp.status, Body: string(resp.body)}
		}
		return nil, fmt.Errorf("clients: decode %s %s: %w", r.method, r.path, decodeErr)
	}

	if r.method == http.MethodGet {
		env.Total = parseTotal(resp.header.Get(headerTotalCount))
	}
	return env, nil
}

func decodeEnvelope[T any](body []byte) (*Envelope[T], error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyBody
	}
	var env Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func parseTotal(raw string) *int64 {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func jsonBody(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("clients: encode body: %w", err)
	}
	return data, nil
}

// NewDefaultHTTPClient returns *http.Client with timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
