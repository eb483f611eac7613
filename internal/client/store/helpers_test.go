package store

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/dblook/internal/client/models"
	"github.com/dmitrijs2005/dblook/internal/client/storage"
)

// recordingStorage wraps Memory and counts writes per key.
type recordingStorage struct {
	*storage.Memory

	mu     sync.Mutex
	writes map[string]int
}

func newRecordingStorage() *recordingStorage {
	return &recordingStorage{Memory: storage.NewMemory(), writes: map[string]int{}}
}

func (r *recordingStorage) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	r.writes[key]++
	r.mu.Unlock()
	return r.Memory.Set(ctx, key, value)
}

func (r *recordingStorage) writeCount(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes[key]
}

type failingStorage struct{}

var errBroken = errors.New("disk on fire")

func (failingStorage) Get(context.Context, string) ([]byte, error) { return nil, errBroken }
func (failingStorage) Set(context.Context, string, []byte) error   { return errBroken }
func (failingStorage) Remove(context.Context, string) error        { return errBroken }

func populated() models.AuthState {
	return models.AuthState{
		Token: models.StringPtr("abc"),
		User:  &models.User{ID: "u1", Username: "a", CreatedAt: "t"},
		Sessions: []models.SessionMeta{
			{ID: "s1", Name: "db1", CreatedAt: "t", LastUsedAt: "t"},
			{ID: "s2", Name: "db2", CreatedAt: "t", LastUsedAt: "t", LastDBName: models.StringPtr("vectors")},
		},
		ActiveSessionID: models.StringPtr("s1"),
	}
}

func fill(a *AuthStore) {
	s := populated()
	a.SetToken(s.Token)
	a.SetUser(s.User)
	a.SetSessions(s.Sessions)
	a.SetActiveSession(s.ActiveSessionID)
}
