package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/dblook/internal/client/storage"
	"github.com/dmitrijs2005/dblook/internal/logging"
)

// DefaultWriteTimeout bounds a single write-through to storage.
const DefaultWriteTimeout = 2 * time.Second

// Envelope is the on-storage layout shared by all stores.
type Envelope[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// Option configures a store.
type Option func(*options)

type options struct {
	log          logging.Logger
	writeTimeout time.Duration
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithWriteTimeout bounds each write-through.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) { o.writeTimeout = d }
}

func buildOptions(opts []Option) options {
	o := options{log: logging.Nop(), writeTimeout: DefaultWriteTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// persisted is the generic state container behind AuthStore and SelectionStore.
type persisted[T any] struct {
	key     string
	storage storage.Storage
	clone   func(T) T
	opts    options

	mu    sync.RWMutex
	state T

	// writeMu orders write-throughs so the last mutation is the last write.
	writeMu sync.Mutex

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(T)
}

func newPersisted[T any](key string, s storage.Storage, initial T, clone func(T) T, opts []Option) *persisted[T] {
	return &persisted[T]{
		key:     key,
		storage: s,
		clone:   clone,
		opts:    buildOptions(opts),
		state:   initial,
		subs:    make(map[int]func(T)),
	}
}

func (p *persisted[T]) snapshot() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clone(p.state)
}

// update applies fn to the state in one critical section, then persists and
// notifies with the resulting snapshot.
func (p *persisted[T]) update(fn func(*T)) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	fn(&p.state)
	next := p.clone(p.state)
	p.mu.Unlock()

	p.persist(next)
	p.notify(next)
}

// restore replaces the state wholesale without writing to storage.
func (p *persisted[T]) restore(s T) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	next := p.clone(s)
	p.mu.Lock()
	p.state = next
	p.mu.Unlock()

	p.notify(p.clone(next))
}

func (p *persisted[T]) persist(s T) {
	if p.storage == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.opts.writeTimeout)
	defer cancel()

	data, err := json.Marshal(Envelope[T]{State: s})
	if err != nil {
		p.opts.log.Error(ctx, "state serialization failed", "key", p.key, "err", err)
		return
	}
	if err := p.storage.Set(ctx, p.key, data); err != nil {
		p.opts.log.Warn(ctx, "state write-through failed", "key", p.key, "err", err)
	}
}

// forget deletes the persisted record. It is ordered with write-throughs, so
// a record written by an earlier transition is gone once it returns.
func (p *persisted[T]) forget(ctx context.Context) error {
	if p.storage == nil {
		return nil
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.opts.writeTimeout)
	defer cancel()
	if err := p.storage.Remove(ctx, p.key); err != nil {
		return fmt.Errorf("remove %s: %w", p.key, err)
	}
	return nil
}

func (p *persisted[T]) subscribe(fn func(T)) func() {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	id := p.nextID
	p.nextID++
	p.subs[id] = fn

	return func() {
		p.subMu.Lock()
		defer p.subMu.Unlock()
		delete(p.subs, id)
	}
}

func (p *persisted[T]) notify(s T) {
	p.subMu.Lock()
	listeners := make([]func(T), 0, len(p.subs))
	for _, fn := range p.subs {
		listeners = append(listeners, fn)
	}
	p.subMu.Unlock()

	for _, fn := range listeners {
		fn(p.clone(s))
	}
}
