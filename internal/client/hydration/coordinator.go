package hydration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/dblook/internal/client/models"
	"github.com/dmitrijs2005/dblook/internal/client/storage"
	"github.com/dmitrijs2005/dblook/internal/client/store"
	"github.com/dmitrijs2005/dblook/internal/logging"
)

// DefaultReadTimeout bounds the read of one persisted record.
const DefaultReadTimeout = 2 * time.Second

// ErrAlreadyRendered is returned by Gate after the guarded function has run once.
var ErrAlreadyRendered = errors.New("hydration: application already rendered")

// Phase is the coordinator state. It only ever moves Pending -> Ready.
type Phase int32

const (
	PhasePending Phase = iota
	PhaseReady
)

func (p Phase) String() string {
	if p == PhaseReady {
		return "ready"
	}
	return "pending"
}

// AuthTarget receives the restored auth state.
type AuthTarget interface {
	Restore(models.AuthState)
}

// SelectionTarget receives the restored UI-selection state.
type SelectionTarget interface {
	Restore(models.SelectionState)
}

// Coordinator runs the one-shot restore of persisted state.
type Coordinator struct {
	storage     storage.Storage
	auth        AuthTarget
	selection   SelectionTarget
	log         logging.Logger
	readTimeout time.Duration

	once     sync.Once
	ready    chan struct{}
	phase    atomic.Int32
	rendered atomic.Bool
	report   Report
}

// New builds a coordinator in PhasePending. s may be nil (no storage: the
// coordinator will complete a cold start).
func New(s storage.Storage, auth AuthTarget, selection SelectionTarget, log logging.Logger) *Coordinator {
	if log == nil {
		log = logging.Nop()
	}
	return &Coordinator{
		storage:     s,
		auth:        auth,
		selection:   selection,
		log:         log.With("component", "hydration"),
		readTimeout: DefaultReadTimeout,
		ready:       make(chan struct{}),
	}
}

// Phase returns the current phase.
func (c *Coordinator) Phase() Phase {
	return Phase(c.phase.Load())
}

// Ready is closed when the coordinator reaches PhaseReady.
func (c *Coordinator) Ready() <-chan struct{} {
	return c.ready
}

// Wait blocks until Ready or until ctx is done.
func (c *Coordinator) Wait(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Report returns the outcomes of the finished hydration. ok is false while pending.
func (c *Coordinator) Report() (r Report, ok bool) {
	select {
	case <-c.ready:
		return c.report, true
	default:
		return Report{}, false
	}
}

// Hydrate restores both stores and moves the coordinator to PhaseReady.
// Only the first call does any work; concurrent callers wait for it, later
// callers get the same Report back.
func (c *Coordinator) Hydrate(ctx context.Context) Report {
	c.once.Do(func() {
		c.report = c.run(ctx)
		c.phase.Store(int32(PhaseReady))
		close(c.ready)

		c.log.Info(ctx, "hydration finished",
			"warm", c.report.Warm(),
			"auth", c.report.Auth.Status.String(),
			"selection", c.report.Selection.Status.String())
	})
	return c.report
}

// Gate is the guard at the composition root. While pending it calls loading
// (if not nil), hydrates, and then calls render exactly once. It returns
// ErrAlreadyRendered on any later call, and ctx.Err() without rendering if ctx
// ends before render would start.
func (c *Coordinator) Gate(ctx context.Context, loading func(), render func(ctx context.Context) error) error {
	if !c.rendered.CompareAndSwap(false, true) {
		return ErrAlreadyRendered
	}

	if c.Phase() == PhasePending && loading != nil {
		loading()
	}

	c.Hydrate(ctx)

	if err := ctx.Err(); err != nil {
		return err
	}
	return render(ctx)
}

func (c *Coordinator) run(ctx context.Context) Report {
	if c.storage == nil {
		c.log.Debug(ctx, "storage unavailable, cold start")
		return Report{
			Auth:      Outcome{Store: "auth", Key: store.AuthStorageKey, Status: StatusUnavailable},
			Selection: Outcome{Store: "selection", Key: store.SelectionStorageKey, Status: StatusUnavailable},
		}
	}

	return Report{
		Auth:      c.hydrateOne(ctx, "auth", store.AuthStorageKey, c.applyAuth),
		Selection: c.hydrateOne(ctx, "selection", store.SelectionStorageKey, c.applySelection),
	}
}

func (c *Coordinator) applyAuth(raw []byte) error {
	state, err := decodeAuth(raw)
	if err != nil {
		return err
	}
	if c.auth != nil {
		c.auth.Restore(state)
	}
	return nil
}

func (c *Coordinator) applySelection(raw []byte) error {
	state, err := decodeSelection(raw)
	if err != nil {
		return err
	}
	if c.selection != nil {
		c.selection.Restore(state)
	}
	return nil
}

// hydrateOne reads and applies one record. Every failure, including a panic
// while applying, stays inside the returned Outcome.
func (c *Coordinator) hydrateOne(ctx context.Context, name, key string, apply func([]byte) error) (out Outcome) {
	out = Outcome{Store: name, Key: key}

	defer func() {
		if r := recover(); r != nil {
			out.Status = StatusCorrupt
			out.Err = fmt.Errorf("restore panicked: %v", r)
		}
		c.logOutcome(ctx, out)
	}()

	readCtx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	raw, err := c.storage.Get(readCtx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		out.Status = StatusAbsent
		return out
	case errors.Is(err, storage.ErrCorrupt):
		out.Status, out.Err = StatusCorrupt, err
		return out
	case err != nil:
		out.Status, out.Err = StatusStorageError, err
		return out
	}

	if err := apply(raw); err != nil {
		out.Err = err
		if errors.Is(err, errNoToken) {
			out.Status = StatusNoToken
		} else {
			out.Status = StatusCorrupt
		}
		return out
	}

	out.Status = StatusRestored
	return out
}

func (c *Coordinator) logOutcome(ctx context.Context, out Outcome) {
	switch out.Status {
	case StatusRestored:
		c.log.Debug(ctx, "store restored", "store", out.Store, "key", out.Key)
	case StatusAbsent:
		c.log.Debug(ctx, "nothing persisted", "store", out.Store, "key", out.Key)
	case StatusNoToken:
		c.log.Debug(ctx, "persisted record has no token, not restored", "store", out.Store, "key", out.Key)
	default:
		c.log.Warn(ctx, "persisted record skipped",
			"store", out.Store, "key", out.Key, "status", out.Status.String(), "err", out.Err)
	}
}
