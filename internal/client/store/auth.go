package store

import (
	"context"

	"github.com/dmitrijs2005/dblook/internal/client/models"
	"github.com/dmitrijs2005/dblook/internal/client/storage"
)

// AuthStorageKey is the fixed storage key of the auth store.
const AuthStorageKey = "auth-storage"

// AuthStore holds who is logged in and which database session is active.
//
// It is a dumb container: inputs are accepted verbatim. In particular
// SetActiveSession does not check that the id is present in the session list,
// and SetSessions does not clear a now-dangling active id. Callers removing a
// session are responsible for clearing the pointer first.
type AuthStore struct {
	p *persisted[models.AuthState]
}

// NewAuthStore returns a store at defaults. It does not read storage; s may be
// nil, in which case the store is memory-only.
func NewAuthStore(s storage.Storage, opts ...Option) *AuthStore {
	return &AuthStore{
		p: newPersisted(AuthStorageKey, s, models.DefaultAuthState(), models.AuthState.Clone, opts),
	}
}

// Snapshot returns a deep copy of the current state.
func (a *AuthStore) Snapshot() models.AuthState {
	return a.p.snapshot()
}

// Token returns the current token, or "" when logged out.
func (a *AuthStore) Token() string {
	s := a.p.snapshot()
	if s.Token == nil {
		return ""
	}
	return *s.Token
}

func (a *AuthStore) SetToken(token *string) {
	a.p.update(func(s *models.AuthState) { s.Token = cloneStr(token) })
}

func (a *AuthStore) SetUser(user *models.User) {
	a.p.update(func(s *models.AuthState) { s.User = user.Clone() })
}

// SetSessions replaces the whole session list.
func (a *AuthStore) SetSessions(sessions []models.SessionMeta) {
	a.p.update(func(s *models.AuthState) { s.Sessions = models.CloneSessions(sessions) })
}

// SetActiveSession replaces the active-session pointer without validation.
func (a *AuthStore) SetActiveSession(id *string) {
	a.p.update(func(s *models.AuthState) { s.ActiveSessionID = cloneStr(id) })
}

// Logout clears token, user, sessions and active session in one transition.
// Other stores are left alone; cross-store cleanup belongs to the caller.
func (a *AuthStore) Logout() {
	a.p.update(func(s *models.AuthState) { *s = models.DefaultAuthState() })
}

// Reset discards everything. It is the same transition as Logout, named for
// callers recovering from errors rather than acting on a user's request.
func (a *AuthStore) Reset() {
	a.Logout()
}

// Disconnect deselects the active session and leaves everything else as is.
func (a *AuthStore) Disconnect() {
	a.p.update(func(s *models.AuthState) { s.ActiveSessionID = nil })
}

// Restore bulk-applies a state read back from storage. It does not write
// through: the persisted copy is where the state came from.
func (a *AuthStore) Restore(state models.AuthState) {
	if state.Sessions == nil {
		state.Sessions = []models.SessionMeta{}
	}
	a.p.restore(state)
}

// Forget deletes the persisted record without touching the in-memory state.
// The next transition writes it again.
func (a *AuthStore) Forget(ctx context.Context) error {
	return a.p.forget(ctx)
}

// Subscribe registers fn to receive the new state after every transition and
// returns a function that unregisters it. fn must not mutate this store.
func (a *AuthStore) Subscribe(fn func(models.AuthState)) (unsubscribe func()) {
	return a.p.subscribe(fn)
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
