package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/dblook/internal/client/client"
	"github.com/dmitrijs2005/dblook/internal/client/hydration"
	"github.com/dmitrijs2005/dblook/internal/client/models"
	"github.com/dmitrijs2005/dblook/internal/client/storage"
	"github.com/dmitrijs2005/dblook/internal/client/store"
	"github.com/dmitrijs2005/dblook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const persistedAuth = `{"state":{"token":"tok","user":{"id":"u1","username":"alice","created_at":"t"},` +
	`"sessions":[{"id":"s1","name":"db1","created_at":"t","last_used_at":"t"}],"activeSessionId":"s1"},"version":0}`

func warmStorage(t *testing.T) *storage.Memory {
	t.Helper()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(context.Background(), store.AuthStorageKey, []byte(persistedAuth)))
	require.NoError(t, mem.Set(context.Background(), store.SelectionStorageKey,
		[]byte(`{"state":{"selectedCollectionId":null,"selectedTable":{"schema":"public","name":"items"}},"version":0}`)))
	return mem
}

func TestRun_WarmStartRestoresBeforeRendering(t *testing.T) {
	out := captureOutput(t)
	ta := newTestAppWithStorage(t, warmStorage(t), "whoami\nstatus\nexit\n")

	require.NoError(t, ta.Run(context.Background()))

	text := out.String()
	loading := strings.Index(text, "Restoring previous session...")
	welcome := strings.Index(text, "Welcome back, alice")
	require.GreaterOrEqual(t, loading, 0)
	require.Greater(t, welcome, loading)
	assert.Contains(t, text, "alice (id u1, created t)")
	assert.Contains(t, text, "Restored at startup: auth restored, selection restored")
	assert.Contains(t, text, "Active session: db1 (s1)")
	assert.Contains(t, text, "Table: public.items")

	assert.Equal(t, 1, ta.fa.resumes())
	assert.Equal(t, ModeOnline, ta.Mode())
	assert.Equal(t, 1, ta.fa.closeCalls)
	assert.Equal(t, hydration.PhaseReady, ta.hydration.Phase())
}

func TestRun_ColdStart(t *testing.T) {
	out := captureOutput(t)
	ta := newTestApp(t, "whoami\nstatus\n")

	require.NoError(t, ta.Run(context.Background()))

	text := out.String()
	assert.NotContains(t, text, "Welcome back")
	assert.Contains(t, text, "You are not logged in")
	assert.Contains(t, text, "Restored at startup: auth absent, selection absent")
	assert.Zero(t, ta.fa.resumes())
}

func TestRun_RendersOnce(t *testing.T) {
	captureOutput(t)
	ta := newTestApp(t, "exit\n")

	require.NoError(t, ta.Run(context.Background()))
	require.ErrorIs(t, ta.Run(context.Background()), hydration.ErrAlreadyRendered)
}

func TestRun_ExpiredSessionIsReported(t *testing.T) {
	out := captureOutput(t)
	ta := newTestAppWithStorage(t, warmStorage(t), "exit\n")
	ta.fa.resumeErr = common.ErrSessionExpired

	require.NoError(t, ta.Run(context.Background()))
	assert.Contains(t, out.String(), "Your session has expired")
}

func TestRun_OfflineKeepsRestoredSession(t *testing.T) {
	out := captureOutput(t)
	ta := newTestAppWithStorage(t, warmStorage(t), "exit\n")
	ta.fa.pingErr = client.ErrUnavailable

	require.NoError(t, ta.Run(context.Background()))

	assert.Contains(t, out.String(), "continuing with the restored session")
	assert.Zero(t, ta.fa.resumes())
	assert.Equal(t, ModeOffline, ta.Mode())
	assert.True(t, ta.unverified.Load())
	assert.Equal(t, "tok", ta.auth.Token())
}

func TestStartOnlineStatusWatcher_VerifiesOnReconnect(t *testing.T) {
	captureOutput(t)
	ta := newTestAppWithStorage(t, warmStorage(t), "")
	ta.hydration.Hydrate(context.Background())
	ta.setMode(context.Background(), ModeOffline)
	ta.unverified.Store(true)
	ta.fa.setPingErr(client.ErrUnavailable)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ta.StartOnlineStatusWatcher(ctx, time.Second)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.NoError(t, ta.fakeClock.BlockUntilContext(ctx, 1))
	ta.fakeClock.Advance(time.Second)
	require.Eventually(t, func() bool { return ta.fa.pingCount() >= 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, ModeOffline, ta.Mode())

	ta.fa.setPingErr(nil)
	ta.fakeClock.Advance(time.Second)
	require.Eventually(t, func() bool { return ta.Mode() == ModeOnline }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return ta.fa.resumes() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, ta.unverified.Load())

	ta.fa.setPingErr(client.ErrUnavailable)
	ta.fakeClock.Advance(time.Second)
	require.Eventually(t, func() bool { return ta.Mode() == ModeOffline }, time.Second, 5*time.Millisecond)
}

func TestSetMode_ReportsChange(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()

	assert.True(t, ta.setMode(ctx, ModeOnline))
	assert.False(t, ta.setMode(ctx, ModeOnline))
	assert.True(t, ta.setMode(ctx, ModeOffline))
	assert.Equal(t, ModeOffline, ta.Mode())
}

func TestGetStatus(t *testing.T) {
	ta := newTestApp(t, "")
	assert.Equal(t, "", ta.getStatus())

	ta.setMode(context.Background(), ModeOnline)
	assert.Equal(t, "(online)", ta.getStatus())

	ta.loggedIn()
	assert.Equal(t, "(alice online)", ta.getStatus())

	ta.auth.SetActiveSession(models.StringPtr("s1"))
	assert.Equal(t, "(alice online @db1)", ta.getStatus())

	ta.auth.SetActiveSession(models.StringPtr("gone"))
	assert.Equal(t, "(alice online @gone)", ta.getStatus())
}
