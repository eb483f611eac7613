package services

import (
	"github.com/dmitrijs2005/dblook/internal/logging"
	"github.com/jonboulle/clockwork"
)

// Option configures a service.
type Option func(*options)

type options struct {
	clock clockwork.Clock
	log   logging.Logger
}

// WithClock replaces the wall clock used for token expiry checks.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the service logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{clock: clockwork.NewRealClock(), log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
