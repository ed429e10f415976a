package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wrapped/internal/server"
	"github.com/desertthunder/wrapped/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the browser login flow.
//
// Starts the local callback server, sends the browser to the backend's login
// page and waits for the redirect carrying the token pair.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = loginTimeout
	}

	if err := r.connect(ctx); err != nil {
		return err
	}

	srv, err := server.StartCallbackServer(r.config.Callback.Addr(), shared.WithLogger(r.logger, "component", "callback"))
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	defer srv.Shutdown()

	loginURL := r.client.LoginURL()
	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser to log in:\n\n%s\n\n", loginURL)
	} else if err := shared.OpenBrowser(loginURL); err != nil {
		r.logger.Warnf("failed to open browser: %v", err)
		r.writePlain("Please open this URL in your browser:\n\n%s\n\n", loginURL)
	} else {
		r.writePlain("Opening browser for login...\n")
	}

	r.writePlain("Waiting for login callback on %s (timeout %s)...\n", srv.Addr(), timeout)

	token, err := srv.Wait(ctx, timeout)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := r.client.Login(ctx, token.AccessToken, token.RefreshToken); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	r.logger.Info("login complete")
	r.writePlainln("✓ Logged in")
	return r.writePlain("You can now use: wrapped dashboard\n")
}

// AuthLogout clears the session in memory and in storage.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	if err := r.client.Logout(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	r.logger.Info("logged out")
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus reports whether a session is stored.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	r.writePlain("Backend: %s\n", r.config.Backend.BaseURL)
	r.writePlain("Storage: %s\n", r.config.Storage.Driver)
	if r.client.Authenticated() {
		return r.writePlain("Session: ✓ Logged in\n")
	}
	return r.writePlain("Session: ✗ Not logged in\n")
}

// AuthRefresh forces a token refresh. A failed refresh ends the session.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	if err := r.client.Refresh(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ Access token refreshed\n")
}
