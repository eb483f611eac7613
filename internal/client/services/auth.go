// Package services contains application services for the dblook client.
// This file defines the authentication service: register, login, logout and
// resuming a restored session after startup.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dblook/internal/client/client"
	"github.com/dmitrijs2005/dblook/internal/client/models"
	"github.com/dmitrijs2005/dblook/internal/client/store"
	"github.com/dmitrijs2005/dblook/internal/common"
	"github.com/dmitrijs2005/dblook/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create an account on the server. It does not log in.
//   - Login: obtain a token and load the user and the session list into the store.
//   - Logout: best-effort server logout, then clear local auth and selection state.
//   - Resume: validate a token restored at startup and refresh the user.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Resume(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client    client.Client
	auth      *store.AuthStore
	selection *store.SelectionStore
	clock     clockwork.Clock
	log       logging.Logger
}

// NewAuthService constructs an AuthService bound to the API client and the stores.
func NewAuthService(c client.Client, auth *store.AuthStore, selection *store.SelectionStore, opts ...Option) AuthService {
	o := buildOptions(opts)
	return &authService{
		client:    c,
		auth:      auth,
		selection: selection,
		clock:     o.clock,
		log:       o.log.With("service", "auth"),
	}
}

func (a *authService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, common.ErrEmptyCredentials
	}

	u, err := a.client.Register(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return u, nil
}

// Login authenticates against the server. On success the store holds the new
// token, the user and the session list, with no active session.
func (a *authService) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, common.ErrEmptyCredentials
	}

	token, err := a.client.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	a.auth.Reset()
	a.selection.Clear()
	a.auth.SetToken(&token)

	u, err := a.client.Me(ctx)
	if err != nil {
		a.auth.Reset()
		return nil, fmt.Errorf("load profile error: %w", err)
	}
	a.auth.SetUser(u)

	sessions, err := a.client.ListSessions(ctx)
	if err != nil {
		a.log.Warn(ctx, "session list not loaded", "err", err)
	} else {
		a.auth.SetSessions(sessions)
	}

	a.log.Info(ctx, "logged in", "user", u.Username)
	return u, nil
}

// Logout tells the server, ignoring failures, and then clears local state.
func (a *authService) Logout(ctx context.Context) error {
	if !a.auth.Snapshot().IsAuthenticated() {
		return common.ErrNotLoggedIn
	}

	if err := a.client.Logout(ctx); err != nil {
		a.log.Warn(ctx, "server logout failed", "err", err)
	}

	a.auth.Logout()
	a.selection.Clear()
	return nil
}

// Resume checks the token restored from storage. An expired or rejected
// token resets the stores and yields common.ErrSessionExpired. When the server
// cannot be reached the restored state is kept as is.
func (a *authService) Resume(ctx context.Context) error {
	s := a.auth.Snapshot()
	if !s.IsAuthenticated() {
		return common.ErrNotLoggedIn
	}

	if tokenExpired(*s.Token, a.clock.Now()) {
		a.log.Info(ctx, "restored token expired")
		a.expire()
		return common.ErrSessionExpired
	}

	u, err := a.client.Me(ctx)
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		a.log.Info(ctx, "restored token rejected by server")
		a.expire()
		return common.ErrSessionExpired
	case errors.Is(err, client.ErrUnavailable):
		a.log.Info(ctx, "server unavailable, keeping restored session")
		return nil
	case err != nil:
		return fmt.Errorf("load profile error: %w", err)
	}
	a.auth.SetUser(u)

	sessions, err := a.client.ListSessions(ctx)
	if err != nil {
		a.log.Warn(ctx, "session list not refreshed", "err", err)
		return nil
	}
	a.auth.SetSessions(sessions)
	dropDanglingActive(a.auth, a.selection)
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

func (a *authService) expire() {
	a.auth.Reset()
	a.selection.Clear()
}

// tokenExpired reads the exp claim without verifying the signature. Tokens
// that are not JWTs, or carry no exp, are left for the server to judge.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// dropDanglingActive clears the active session when it is no longer listed.
func dropDanglingActive(auth *store.AuthStore, selection *store.SelectionStore) {
	s := auth.Snapshot()
	if s.ActiveSessionID == nil {
		return
	}
	if _, ok := s.FindSession(*s.ActiveSessionID); ok {
		return
	}
	auth.Disconnect()
	selection.Clear()
}
