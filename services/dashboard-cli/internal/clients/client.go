package clients

import (
	"context"

	"go.uber.org/zap"
)

// Session is the token holder the client reads from and updates on login.
type Session interface {
	TokenSource
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Client exposes the typed dashboard API.
type Client struct {
	base    *BaseClient
	session Session
	logger  *zap.Logger
}

// NewClient returns client bound to session.
func NewClient(baseURL string, httpClient HTTPDoer, session Session, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:    NewBaseClient(baseURL, httpClient, session, logger),
		session: session,
		logger:  logger,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.base.BaseURL()
}

// IsAuthorized reports whether a bearer token is available.
func (c *Client) IsAuthorized(ctx context.Context) bool {
	return c.session.Token(ctx) != ""
}
