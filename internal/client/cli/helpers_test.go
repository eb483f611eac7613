package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/dblook/internal/client/config"
	"github.com/dmitrijs2005/dblook/internal/client/hydration"
	"github.com/dmitrijs2005/dblook/internal/client/models"
	"github.com/dmitrijs2005/dblook/internal/client/storage"
	"github.com/dmitrijs2005/dblook/internal/client/store"
	"github.com/dmitrijs2005/dblook/internal/common"
	"github.com/dmitrijs2005/dblook/internal/logging"
	"github.com/jonboulle/clockwork"
)

// ---- output capture ----

type captured struct {
	mu    sync.Mutex
	lines []string
}

func (c *captured) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.lines, "\n")
}

func captureOutput(t *testing.T) *captured {
	t.Helper()
	c := &captured{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.lines = append(c.lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return c
}

// ---- fake services ----

type fakeAuth struct {
	mu sync.Mutex

	auth *store.AuthStore

	regUser string
	regPass string
	regErr  error

	loginUser string
	loginPass string
	loginErr  error

	logoutCalled bool
	logoutErr    error

	resumeCalls int
	resumeErr   error

	pingErr    error
	pingCalls  int
	closeCalls int
}

func (f *fakeAuth) Register(_ context.Context, user, pass string) (*models.User, error) {
	f.regUser, f.regPass = user, pass
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{ID: "u1", Username: user}, nil
}

func (f *fakeAuth) Login(_ context.Context, user, pass string) (*models.User, error) {
	f.loginUser, f.loginPass = user, pass
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	tok := "tok"
	f.auth.SetToken(&tok)
	u := &models.User{ID: "u1", Username: user}
	f.auth.SetUser(u)
	return u, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.auth.Logout()
	return nil
}

func (f *fakeAuth) Resume(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumeCalls++
	return f.resumeErr
}

func (f *fakeAuth) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingCalls++
	return f.pingErr
}

func (f *fakeAuth) Close(context.Context) error {
	f.closeCalls++
	return nil
}

func (f *fakeAuth) setPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

func (f *fakeAuth) pingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingCalls
}

func (f *fakeAuth) resumes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resumeCalls
}

type fakeSessions struct {
	auth      *store.AuthStore
	selection *store.SelectionStore

	refreshErr error

	createName string
	createURL  string
	createErr  error

	deleted   string
	deleteErr error

	connected  string
	connectErr error

	disconnectErr error

	tables    []models.TableInfo
	tablesErr error
}

func (f *fakeSessions) Refresh(context.Context) ([]models.SessionMeta, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.auth.Snapshot().Sessions, nil
}

func (f *fakeSessions) Create(_ context.Context, name, dbURL string) (string, error) {
	f.createName, f.createURL = name, dbURL
	return "s-new", f.createErr
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.deleted = id
	return f.deleteErr
}

func (f *fakeSessions) Connect(_ context.Context, id string) (*models.DatabaseInfo, error) {
	f.connected = id
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	f.auth.SetActiveSession(&id)
	return &models.DatabaseInfo{Connected: true, Database: "postgres", Version: "16.2"}, nil
}

func (f *fakeSessions) Disconnect(context.Context) error {
	if f.disconnectErr != nil {
		return f.disconnectErr
	}
	f.auth.Disconnect()
	f.selection.Clear()
	return nil
}

func (f *fakeSessions) Active() (models.SessionMeta, bool) {
	s := f.auth.Snapshot()
	if s.ActiveSessionID == nil {
		return models.SessionMeta{}, false
	}
	return s.FindSession(*s.ActiveSessionID)
}

func (f *fakeSessions) ListTables(context.Context) ([]models.TableInfo, error) {
	if f.tablesErr != nil {
		return nil, f.tablesErr
	}
	return f.tables, nil
}

func (f *fakeSessions) ListCollections(ctx context.Context) ([]models.Collection, error) {
	sel := f.selection.Snapshot().SelectedTable
	if sel == nil {
		return nil, common.ErrNoTableSelected
	}
	for _, t := range f.tables {
		if t.Ref() == *sel {
			return t.Collections, nil
		}
	}
	return nil, common.ErrTableNotFound
}

func (f *fakeSessions) SelectTable(_ context.Context, schema, name string) (models.TableInfo, error) {
	if schema == "" {
		schema = "public"
	}
	for _, t := range f.tables {
		if t.Schema == schema && t.Name == name {
			ref := t.Ref()
			f.selection.SelectTable(&ref)
			return t, nil
		}
	}
	return models.TableInfo{}, fmt.Errorf("%w: %s.%s", common.ErrTableNotFound, schema, name)
}

func (f *fakeSessions) SelectCollection(ctx context.Context, key string) (models.Collection, error) {
	if key == "" {
		f.selection.SelectCollection(nil)
		return models.Collection{}, nil
	}
	list, err := f.ListCollections(ctx)
	if err != nil {
		return models.Collection{}, err
	}
	c, ok := models.FindCollection(list, key)
	if !ok {
		return models.Collection{}, common.ErrCollectionNotFound
	}
	f.selection.SelectCollection(&c.ID)
	return c, nil
}

// ---- app builder ----

type testApp struct {
	*App
	storage   *storage.Memory
	fa        *fakeAuth
	fs        *fakeSessions
	fakeClock *clockwork.FakeClock
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	return newTestAppWithStorage(t, storage.NewMemory(), input)
}

func newTestAppWithStorage(t *testing.T, mem *storage.Memory, input string) *testApp {
	t.Helper()
	auth := store.NewAuthStore(mem)
	selection := store.NewSelectionStore(mem)
	fa := &fakeAuth{auth: auth}
	fs := &fakeSessions{auth: auth, selection: selection, tables: browsableTables()}
	clock := clockwork.NewFakeClock()

	app := &App{
		config:         &config.Config{OnlineCheckInterval: time.Second},
		log:            logging.Nop(),
		clock:          clock,
		auth:           auth,
		selection:      selection,
		hydration:      hydration.New(mem, auth, selection, nil),
		authService:    fa,
		sessionService: fs,
		reader:         rdr(input),
		out:            io.Discard,
	}
	app.watchStores()
	t.Cleanup(func() {
		for _, unsubscribe := range app.unsubscribe {
			unsubscribe()
		}
	})
	return &testApp{App: app, storage: mem, fa: fa, fs: fs, fakeClock: clock}
}

func browsableTables() []models.TableInfo {
	return []models.TableInfo{
		{
			Schema:        "public",
			Name:          "items",
			VectorColumns: []models.VectorColumn{{Name: "embedding", Type: "vector"}},
			Collections:   []models.Collection{{ID: "c1", Name: "Handbook", DocumentCount: 12}, {ID: "c7", Name: "Policies"}},
		},
		{Schema: "docs", Name: "chunks", VectorColumns: []models.VectorColumn{{Name: "vec", Type: "vector"}}},
	}
}

func (ta *testApp) loggedIn() {
	tok := "tok"
	ta.auth.SetToken(&tok)
	ta.auth.SetUser(&models.User{ID: "u1", Username: "alice", CreatedAt: "2025-01-01"})
	ta.auth.SetSessions([]models.SessionMeta{
		{ID: "s1", Name: "db1", LastUsedAt: "t1", LastDBName: models.StringPtr("postgres")},
		{ID: "s2", Name: "db2", LastUsedAt: "t2"},
	})
}
