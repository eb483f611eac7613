package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/dmitrijs2005/dblook/internal/client/client"
	"github.com/dmitrijs2005/dblook/internal/client/config"
	"github.com/dmitrijs2005/dblook/internal/client/hydration"
	"github.com/dmitrijs2005/dblook/internal/client/models"
	"github.com/dmitrijs2005/dblook/internal/client/services"
	"github.com/dmitrijs2005/dblook/internal/client/storage"
	"github.com/dmitrijs2005/dblook/internal/client/store"
	"github.com/dmitrijs2005/dblook/internal/common"
	"github.com/dmitrijs2005/dblook/internal/logging"
	"github.com/jonboulle/clockwork"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds one connectivity probe.
const pingTimeout = 3 * time.Second

type App struct {
	config         *config.Config
	log            logging.Logger
	clock          clockwork.Clock
	storageCloser  io.Closer
	auth           *store.AuthStore
	selection      *store.SelectionStore
	hydration      *hydration.Coordinator
	authService    services.AuthService
	sessionService services.SessionService
	reader         *bufio.Reader
	out            io.Writer

	mu   sync.Mutex
	mode Mode

	// unverified is set while a restored token has not been checked with the
	// server (startup happened offline).
	unverified atomic.Bool

	unsubscribe []func()
}

// NewApp wires storage, stores, hydration, the API client and services.
// A storage backend that cannot be opened is not fatal: the app runs
// without persistence and starts cold.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogBackend, c.LogLevel, c.LogFormat, os.Stderr)

	openCtx, cancel := context.WithTimeout(ctx, c.StorageTimeout)
	st, closer, err := storage.Open(openCtx, storage.Options{
		Driver:     c.StorageDriver,
		Path:       c.StoragePath,
		RedisURL:   c.RedisURL,
		Prefix:     c.StoragePrefix,
		Passphrase: []byte(c.Passphrase),
	})
	cancel()
	if err != nil {
		log.Warn(ctx, "persistence unavailable, state will not survive a restart",
			"driver", c.StorageDriver, "err", err)
		st = nil
	}

	storeOpts := []store.Option{store.WithLogger(log), store.WithWriteTimeout(c.StorageTimeout)}
	auth := store.NewAuthStore(st, storeOpts...)
	selection := store.NewSelectionStore(st, storeOpts...)

	apiClient, err := client.NewHTTPClient(c.ServerURL, auth, client.WithTimeout(c.RequestTimeout))
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	svcOpts := []services.Option{services.WithLogger(log)}
	a := &App{
		config:         c,
		log:            log,
		clock:          clockwork.NewRealClock(),
		storageCloser:  closer,
		auth:           auth,
		selection:      selection,
		hydration:      hydration.New(st, auth, selection, log),
		authService:    services.NewAuthService(apiClient, auth, selection, svcOpts...),
		sessionService: services.NewSessionService(apiClient, auth, selection, svcOpts...),
		reader:         bufio.NewReader(os.Stdin),
		out:            os.Stdout,
	}
	a.watchStores()
	return a, nil
}

// watchStores follows store transitions. Losing the token by any path
// (logout, reset, a rejected token) ends the unverified offline session.
func (a *App) watchStores() {
	ctx := context.Background()
	a.unsubscribe = append(a.unsubscribe,
		a.auth.Subscribe(func(s models.AuthState) {
			if !s.IsAuthenticated() {
				a.unverified.Store(false)
			}
			a.log.Debug(ctx, "auth state changed",
				"authenticated", s.IsAuthenticated(),
				"sessions", len(s.Sessions),
				"active", s.HasActiveSession())
		}),
		a.selection.Subscribe(func(s models.SelectionState) {
			table := ""
			if s.SelectedTable != nil {
				table = s.SelectedTable.String()
			}
			a.log.Debug(ctx, "selection changed",
				"table", table,
				"collection", s.SelectedCollectionID != nil)
		}),
	)
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// setMode switches the connectivity mode and reports whether it changed.
func (a *App) setMode(ctx context.Context, mode Mode) bool {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", string(mode))
	}
	return changed
}

// Run shows the banner, restores persisted state behind the hydration gate
// and then runs the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close(ctx)

	fmt.Fprintln(a.out, figure.NewFigure("dblook", "cybermedium", true).String())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	return a.hydration.Gate(ctx,
		func() { printlnFn("Restoring previous session...") },
		func(ctx context.Context) error {
			a.resume(ctx)
			go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

			printlnFn("Welcome to dblook CLI (type 'help' for commands)")
			runREPL(ctx, a, a.getStatus, a.reader)
			return nil
		})
}

// resume validates a token restored at startup and sets the initial mode.
func (a *App) resume(ctx context.Context) {
	if a.pingOK(ctx) {
		a.setMode(ctx, ModeOnline)
	} else {
		a.setMode(ctx, ModeOffline)
	}

	if !a.auth.Snapshot().IsAuthenticated() {
		return
	}
	if a.Mode() == ModeOffline {
		a.unverified.Store(true)
		printlnFn("Server unreachable, continuing with the restored session")
		return
	}

	a.unverified.Store(false)
	switch err := a.authService.Resume(ctx); {
	case errors.Is(err, common.ErrSessionExpired):
		printlnFn("Your session has expired, please log in again")
	case err != nil:
		a.log.Warn(ctx, "session resume failed", "err", err)
	default:
		if u := a.auth.Snapshot().User; u != nil {
			printlnFn("Welcome back,", u.Username)
		}
	}
}

func (a *App) pingOK(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return a.authService.Ping(ctx) == nil
}

// StartOnlineStatusWatcher probes the server every interval and switches the
// mode. A session restored while offline is verified once the server is back.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := a.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			if !a.pingOK(ctx) {
				a.setMode(ctx, ModeOffline)
				continue
			}
			if a.setMode(ctx, ModeOnline) && a.unverified.CompareAndSwap(true, false) {
				if err := a.authService.Resume(ctx); errors.Is(err, common.ErrSessionExpired) {
					printlnFn("Your session has expired, please log in again")
				}
			}

		case <-ctx.Done():
			return
		}
	}
}

// Close releases the API client and the storage backend.
func (a *App) Close(ctx context.Context) {
	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.unsubscribe = nil

	if err := a.authService.Close(ctx); err != nil {
		a.log.Warn(ctx, "closing api client", "err", err)
	}
	if a.storageCloser != nil {
		if err := a.storageCloser.Close(); err != nil {
			a.log.Warn(ctx, "closing storage", "err", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.Snapshot().IsAuthenticated()
}

func (a *App) getStatus() string {
	s := a.auth.Snapshot()
	parts := ""
	if s.User != nil {
		parts = s.User.Username + " "
	}
	if m := a.Mode(); m != "" {
		parts += string(m)
	}
	if s.ActiveSessionID != nil {
		name := *s.ActiveSessionID
		if meta, ok := s.FindSession(name); ok {
			name = meta.Name
		}
		parts += " @" + name
	}
	if parts == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", parts)
}
