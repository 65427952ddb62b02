package app

import (
	"context"
	"fmt"
	"time"

	"envdashboard/services/dashboard-cli/internal/render"
	"envdashboard/services/dashboard-cli/internal/router"
	"envdashboard/services/dashboard-cli/internal/session"
	"envdashboard/services/dashboard-cli/internal/tui"
)

// credentials returns flag values, prompting for whatever is missing.
func (a *App) credentials(title, username, password string) (string, string, error) {
	if username != "" && password != "" {
		return username, password, nil
	}
	creds, err := tui.PromptCredentials(a.in, a.out, title, username)
	if err != nil {
		return "", "", err
	}
	return creds.Username, creds.Password, nil
}

func (a *App) cmdRegister(ctx context.Context, p *render.Printer, args []string) error {
	fs := a.subFlags("register")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.enter(ctx, router.Register); err != nil {
		return err
	}

	user, pass, err := a.credentials("Create an envmon account", *username, *password)
	if err != nil {
		return err
	}
	if _, err := checked(a.client.Register(ctx, user, pass)); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	p.Line("registered %s; run `envmon login` to sign in", user)
	return nil
}

func (a *App) cmdLogin(ctx context.Context, p *render.Printer, args []string) error {
	fs := a.subFlags("login")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.enter(ctx, router.Login); err != nil {
		return err
	}

	user, pass, err := a.credentials("Log in to envmon", *username, *password)
	if err != nil {
		return err
	}
	env, err := checked(a.client.Login(ctx, user, pass))
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if env.Payload.Token == "" {
		return fmt.Errorf("login: server returned no token")
	}
	p.Line("logged in as %s", user)
	a.describeToken(p, env.Payload.Token)
	return nil
}

func (a *App) cmdLogout(ctx context.Context, p *render.Printer, args []string) error {
	if err := parseFlags(a.subFlags("logout"), args); err != nil {
		return err
	}
	if err := a.client.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	p.Line("logged out")
	return nil
}

func (a *App) cmdAccount(ctx context.Context, p *render.Printer, args []string) error {
	if err := parseFlags(a.subFlags("account"), args); err != nil {
		return err
	}
	if err := a.enter(ctx, router.Admin); err != nil {
		return err
	}
	env, err := checked(a.client.GetAccount(ctx))
	if err != nil {
		return fmt.Errorf("account: %w", err)
	}
	if p.Structured() {
		return p.Value(env.Payload)
	}
	p.Line("username: %s", env.Payload.Username)
	a.describeToken(p, a.session.Token(ctx))
	return nil
}

func (a *App) cmdToken(ctx context.Context, p *render.Printer, args []string) error {
	verb, rest, err := subcommand("token", args, "regenerate")
	if err != nil {
		return err
	}
	if err := parseFlags(a.subFlags("token "+verb), rest); err != nil {
		return err
	}
	if err := a.enter(ctx, router.Admin); err != nil {
		return err
	}
	env, err := checked(a.client.RegenerateToken(ctx))
	if err != nil {
		return fmt.Errorf("regenerate token: %w", err)
	}
	p.Line("token regenerated for %s", env.Payload.Username)
	a.describeToken(p, env.Payload.Token)
	return nil
}

func (a *App) cmdPassword(ctx context.Context, p *render.Printer, args []string) error {
	fs := a.subFlags("password")
	newPassword := fs.String("new", "", "new password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.enter(ctx, router.Admin); err != nil {
		return err
	}

	pass := *newPassword
	if pass == "" {
		// The prompt wants a username first; reuse the account name.
		account, err := checked(a.client.GetAccount(ctx))
		if err != nil {
			return fmt.Errorf("password: %w", err)
		}
		creds, err := tui.PromptCredentials(a.in, a.out, "Choose a new password", account.Payload.Username)
		if err != nil {
			return err
		}
		pass = creds.Password
	}
	if _, err := checked(a.client.ChangePassword(ctx, pass)); err != nil {
		return fmt.Errorf("password: %w", err)
	}
	p.Line("password changed")
	return nil
}

func (a *App) describeToken(p *render.Printer, token string) {
	if p.Structured() {
		return
	}
	info, ok := session.Inspect(token)
	if !ok {
		return
	}
	if info.Subject != "" {
		p.Line("token subject: %s", info.Subject)
	}
	if !info.ExpiresAt.IsZero() {
		state := "valid"
		if info.Expired(time.Now()) {
			state = "expired"
		}
		p.Line("token expires: %s (%s)", info.ExpiresAt.Local().Format(time.RFC1123), state)
	}
}
