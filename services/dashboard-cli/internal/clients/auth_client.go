package clients

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"envdashboard/services/dashboard-cli/internal/models"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account. The returned token is not adopted; log in afterwards.
func (c *Client) Register(ctx context.Context, username, password string) (*Envelope[models.TokenPayload], error) {
	body, err := jsonBody(credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	return doEnvelope[models.TokenPayload](ctx, c.base, request{method: http.MethodPost, path: "/register", body: body})
}

// Login authenticates and, on success, stores the returned token in the session.
func (c *Client) Login(ctx context.Context, username, password string) (*Envelope[models.TokenPayload], error) {
	body, err := jsonBody(credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	env, err := doEnvelope[models.TokenPayload](ctx, c.base, request{method: http.MethodPost, path: "/login", body: body})
	if err != nil {
		return nil, err
	}
	if env.OK() && env.Payload.Token != "" {
		if err := c.session.SetToken(ctx, env.Payload.Token); err != nil {
			c.logger.Warn("persist token failed", zap.Error(err))
			return env, err
		}
	}
	return env, nil
}

// Logout forgets the token locally. The server is not contacted.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

// GetAccount returns the authenticated account.
func (c *Client) GetAccount(ctx context.Context) (*Envelope[models.Account], error) {
	return doEnvelope[models.Account](ctx, c.base, request{method: http.MethodGet, path: "/account"})
}

// RegenerateToken asks the server for a new token and adopts it.
func (c *Client) RegenerateToken(ctx context.Context) (*Envelope[models.Account], error) {
	env, err := doEnvelope[models.Account](ctx, c.base, request{method: http.MethodPost, path: "/account/regenrateToken"})
	if err != nil {
		return nil, err
	}
	if env.Payload.Token != "" {
		if err := c.session.SetToken(ctx, env.Payload.Token); err != nil {
			c.logger.Warn("persist regenerated token failed", zap.Error(err))
			return env, err
		}
	}
	return env, nil
}

// ChangePassword sets a new password for the authenticated account.
func (c *Client) ChangePassword(ctx context.Context, newPassword string) (*Envelope[models.Account], error) {
	body, err := jsonBody(map[string]string{"new_password": newPassword})
	if err != nil {
		return nil, err
	}
	return doEnvelope[models.Account](ctx, c.base, request{method: http.MethodPost, path: "/account/changePassword", body: body})
}
