package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dblook/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getSecret     = GetSecret
)

// askUsername takes the username from args or prompts for it.
func (a *App) askUsername(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return getSimpleText(a.reader, "Enter username", a.out)
}

// Register prompts for a username and password and creates an account. It
// does not log in.
func (a *App) Register(ctx context.Context, args []string) error {
	userName, err := a.askUsername(args)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Register(ctx, userName, string(password))
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Account %s created, you can now log in", u.Username))
	return nil
}

// Login prompts for credentials and authenticates. On success the store
// holds the token, the user and the session list.
func (a *App) Login(ctx context.Context, args []string) error {
	userName, err := a.askUsername(args)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, userName, string(password))
	if err != nil {
		return err
	}
	a.unverified.Store(false)

	printlnFn("Logged in as", u.Username)
	return nil
}

// Logout clears the token, the user, the sessions and the selection.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	s := a.auth.Snapshot()
	if !s.IsAuthenticated() {
		return common.ErrNotLoggedIn
	}
	if s.User == nil {
		printlnFn("Logged in (profile not loaded yet)")
		return nil
	}

	line := fmt.Sprintf("%s (id %s, created %s)", s.User.Username, s.User.ID, s.User.CreatedAt)
	if s.User.LastLoginAt != nil {
		line += ", last login " + *s.User.LastLoginAt
	}
	printlnFn(line)
	return nil
}

// Reset discards all local auth and selection state without contacting the
// server, and deletes the persisted records so the next start is cold.
func (a *App) Reset(ctx context.Context) error {
	a.auth.Reset()
	a.selection.Clear()

	for _, err := range []error{a.auth.Forget(ctx), a.selection.Forget(ctx)} {
		if err != nil {
			a.log.Warn(ctx, "persisted state not removed", "err", err)
		}
	}
	printlnFn("Local state cleared")
	return nil
}

// describeError turns an error returned by a command into a user message.
func describeError(err error) string {
	switch {
	case errors.Is(err, common.ErrNotLoggedIn):
		return "You are not logged in (use 'login')"
	case errors.Is(err, common.ErrSessionExpired):
		return "Your session has expired, please log in again"
	case errors.Is(err, common.ErrNoActiveSession):
		return "No active session (use 'connect <id>')"
	case errors.Is(err, common.ErrNoTableSelected):
		return "No table selected (use 'table [schema.]name')"
	case errors.Is(err, common.ErrTableNotFound), errors.Is(err, common.ErrAmbiguousTable):
		return "Error: " + err.Error() + " (use 'tables' to list them)"
	case errors.Is(err, common.ErrCollectionNotFound):
		return "Error: " + err.Error() + " (use 'collections' to list them)"
	default:
		return "Error: " + err.Error()
	}
}
