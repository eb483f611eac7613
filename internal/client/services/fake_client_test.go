package services

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/dblook/internal/client/models"
	"github.com/dmitrijs2005/dblook/internal/client/storage"
	"github.com/dmitrijs2005/dblook/internal/client/store"
)

// fakeClient implements client.Client for service unit tests.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	RegisterRet *models.User
	RegisterErr error

	LoginRet string
	LoginErr error

	MeRet *models.User
	MeErr error

	LogoutErr error

	Sessions        []models.SessionMeta
	ListSessionsErr error

	CreateRet string
	CreateErr error

	DeleteErr error

	ConnectRet *models.DatabaseInfo
	ConnectErr error

	DisconnectErr error

	Tables        []models.TableInfo
	ListTablesErr error

	Collections        []models.Collection
	ListCollectionsErr error

	PingErr  error
	CloseErr error

	LastLoginUser  string
	LastLoginPass  string
	LastCreateName string
	LastCreateURL  string
	LastSessionID  string
	LastTable      models.TableRef
	LastIDColumn   string
	LastNameColumn string
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) Close() error {
	f.record("close")
	return f.CloseErr
}

func (f *fakeClient) Register(ctx context.Context, username, password string) (*models.User, error) {
	f.record("register")
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (string, error) {
	f.record("login")
	f.LastLoginUser, f.LastLoginPass = username, password
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Me(ctx context.Context) (*models.User, error) {
	f.record("me")
	return f.MeRet, f.MeErr
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.record("logout")
	return f.LogoutErr
}

func (f *fakeClient) ListSessions(ctx context.Context) ([]models.SessionMeta, error) {
	f.record("list")
	if f.ListSessionsErr != nil {
		return nil, f.ListSessionsErr
	}
	return models.CloneSessions(f.Sessions), nil
}

func (f *fakeClient) CreateSession(ctx context.Context, name, dbURL string) (string, error) {
	f.record("create")
	f.LastCreateName, f.LastCreateURL = name, dbURL
	return f.CreateRet, f.CreateErr
}

func (f *fakeClient) DeleteSession(ctx context.Context, id string) error {
	f.record("delete")
	f.LastSessionID = id
	return f.DeleteErr
}

func (f *fakeClient) ConnectSession(ctx context.Context, id string) (*models.DatabaseInfo, error) {
	f.record("connect")
	f.LastSessionID = id
	return f.ConnectRet, f.ConnectErr
}

func (f *fakeClient) DisconnectSession(ctx context.Context, id string) error {
	f.record("disconnect")
	f.LastSessionID = id
	return f.DisconnectErr
}

func (f *fakeClient) ListTables(ctx context.Context) ([]models.TableInfo, error) {
	f.record("tables")
	if f.ListTablesErr != nil {
		return nil, f.ListTablesErr
	}
	return append([]models.TableInfo{}, f.Tables...), nil
}

func (f *fakeClient) ListCollections(ctx context.Context, table models.TableRef, idColumn, nameColumn string) ([]models.Collection, error) {
	f.record("collections")
	f.LastTable, f.LastIDColumn, f.LastNameColumn = table, idColumn, nameColumn
	if f.ListCollectionsErr != nil {
		return nil, f.ListCollectionsErr
	}
	return append([]models.Collection{}, f.Collections...), nil
}

func (f *fakeClient) Ping(ctx context.Context) error {
	f.record("ping")
	return f.PingErr
}

// ---- helpers ----

type stores struct {
	storage   *storage.Memory
	auth      *store.AuthStore
	selection *store.SelectionStore
}

func newStores(t *testing.T) stores {
	t.Helper()
	mem := storage.NewMemory()
	return stores{
		storage:   mem,
		auth:      store.NewAuthStore(mem),
		selection: store.NewSelectionStore(mem),
	}
}

func twoSessions() []models.SessionMeta {
	return []models.SessionMeta{
		{ID: "s1", Name: "db1", CreatedAt: "t", LastUsedAt: "t"},
		{ID: "s2", Name: "db2", CreatedAt: "t", LastUsedAt: "t"},
	}
}

// vectorTables is a listing with a LangChain table in public, a plain table
// in docs and a name present in two non-public schemas.
func vectorTables() []models.TableInfo {
	return []models.TableInfo{
		{
			Schema:        "public",
			Name:          "items",
			VectorColumns: []models.VectorColumn{{Name: "embedding", Type: "vector"}},
			Collections: []models.Collection{
				{ID: "c1", Name: "Handbook", DocumentCount: 12},
				{ID: "c2", Name: "Policies", DocumentCount: 3},
			},
		},
		{Schema: "docs", Name: "chunks", VectorColumns: []models.VectorColumn{{Name: "vec", Type: "vector"}}},
		{Schema: "a", Name: "dup"},
		{Schema: "b", Name: "dup"},
	}
}

// loggedIn fills the auth store as after a login with s1 active and
// something selected.
func (s stores) loggedIn(token string) {
	s.auth.SetToken(&token)
	s.auth.SetUser(&models.User{ID: "u1", Username: "alice", CreatedAt: "t"})
	s.auth.SetSessions(twoSessions())
	s.auth.SetActiveSession(models.StringPtr("s1"))
	s.selection.SelectTable(&models.TableRef{Schema: "public", Name: "items"})
	s.selection.SelectCollection(models.StringPtr("c1"))
}
