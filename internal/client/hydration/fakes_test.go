package hydration

import (
	"context"
	"sync/atomic"

	"github.com/dmitrijs2005/dblook/internal/client/models"
	"github.com/dmitrijs2005/dblook/internal/client/storage"
)

type recordingStorage struct {
	*storage.Memory
	writes atomic.Int32
}

func (r *recordingStorage) Set(ctx context.Context, key string, value []byte) error {
	r.writes.Add(1)
	return r.Memory.Set(ctx, key, value)
}

type flakyStorage struct {
	*storage.Memory
	failKey string
}

func (f *flakyStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == f.failKey {
		return nil, errFlaky
	}
	return f.Memory.Get(ctx, key)
}

type countingTarget struct {
	calls atomic.Int32
}

func (c *countingTarget) Restore(models.AuthState) {
	c.calls.Add(1)
}

type panickingTarget struct{}

func (panickingTarget) Restore(models.AuthState) {
	panic("restore exploded")
}
