package storage

import (
	"context"
	"fmt"
	"io"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
	DriverNone   = "none"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver     string
	Path       string
	RedisURL   string
	Prefix     string
	Passphrase []byte
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser = closerFunc(func() error { return nil })

// Open builds the configured backend, wrapping it in Encrypted when a
// passphrase is set. DriverNone yields a nil Storage (persistence unavailable).
// The returned closer is never nil.
func Open(ctx context.Context, opts Options) (Storage, io.Closer, error) {
	var (
		s      Storage
		closer io.Closer = nopCloser
	)

	switch opts.Driver {
	case DriverNone:
		return nil, nopCloser, nil
	case DriverMemory:
		s = NewMemory()
	case DriverRedis:
		r, err := DialRedis(ctx, opts.RedisURL, opts.Prefix)
		if err != nil {
			return nil, nopCloser, err
		}
		s, closer = r, r
	case DriverSQLite, "":
		db, err := OpenSQLite(ctx, opts.Path)
		if err != nil {
			return nil, nopCloser, fmt.Errorf("open sqlite %s: %w", opts.Path, err)
		}
		s, closer = NewSQLite(db), db
	default:
		return nil, nopCloser, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}

	if len(opts.Passphrase) == 0 {
		return s, closer, nil
	}

	enc, err := NewEncrypted(ctx, s, opts.Passphrase)
	if err != nil {
		_ = closer.Close()
		return nil, nopCloser, err
	}
	return enc, closer, nil
}
