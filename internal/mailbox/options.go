package mailbox

import (
	"os"
	"time"

	"github.com/Iron-Ham/posthub/internal/event"
	"github.com/Iron-Ham/posthub/internal/logging"
	"github.com/spf13/afero"
)

// Option configures a Store.
type Option func(*Store)

// WithFs sets the filesystem the store operates on. The default is the
// operating system filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithGenerator sets the name generator shared by all mailboxes of the store.
func WithGenerator(g *Generator) Option {
	return func(s *Store) {
		if g != nil {
			s.gen = g
		}
	}
}

// WithLogger attaches a logger. Mailboxes derive a per-user child from it.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBus attaches an event bus. Delivery and consumption outcomes are
// published on it.
func WithBus(bus *event.Bus) Option {
	return func(s *Store) {
		s.bus = bus
	}
}

// WithFileMode sets the permission bits of delivered message files.
func WithFileMode(mode os.FileMode) Option {
	return func(s *Store) {
		s.fileMode = mode.Perm()
	}
}

// WithPollInterval sets how often Watch rescans the unread directory in
// addition to reacting to filesystem notifications. Zero or negative values
// are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}
