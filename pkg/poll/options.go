package poll

import (
	"io"
	"os"

	"github.com/Alwanly/attribute-poll/pkg/logger"
)

type options struct {
	log      *logger.CanonicalLogger
	out      io.Writer
	observer Observer
	platform Platform
	queue    Queue
}

type Option func(*options)

func WithLogger(log *logger.CanonicalLogger) Option {
	return func(o *options) { o.log = log }
}

// WithOutput sets where PrintQueue writes. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithPlatform replaces the system clock for an AttributePoll.
func WithPlatform(p Platform) Option {
	return func(o *options) { o.platform = p }
}

// WithQueue replaces the default Entries queue for an AttributePoll.
func WithQueue(q Queue) Option {
	return func(o *options) { o.queue = q }
}

func buildOptions(opts []Option) options {
	o := options{
		log:      logger.NewNop(),
		out:      os.Stdout,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
