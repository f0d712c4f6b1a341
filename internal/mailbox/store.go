package mailbox

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/Iron-Ham/posthub/internal/event"
	"github.com/Iron-Ham/posthub/internal/logging"
	"github.com/spf13/afero"
)

const (
	defaultFileMode     os.FileMode = 0o644
	defaultPollInterval             = 2 * time.Second
)

// Store is the mailbox root. It hands out Mailbox handles that share its
// filesystem, name generator, logger and event bus.
type Store struct {
	root         string
	fs           afero.Fs
	gen          *Generator
	logger       *logging.Logger
	bus          *event.Bus
	fileMode     os.FileMode
	pollInterval time.Duration
}

// NewStore creates a Store rooted at root. Nothing is created on disk.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		root:         root,
		fs:           afero.NewOsFs(),
		logger:       logging.NopLogger(),
		fileMode:     defaultFileMode,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gen == nil {
		s.gen = NewGenerator()
	}
	return s
}

// Root returns the mailbox root directory.
func (s *Store) Root() string {
	return s.root
}

// Fs returns the filesystem the store operates on.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Mailbox returns the handle for user's mailbox. It fails with a
// validation error for names that cannot safely name a directory; it does
// not check that the mailbox exists.
func (s *Store) Mailbox(user string) (*Mailbox, error) {
	if err := ValidateUser(user); err != nil {
		return nil, err
	}
	return &Mailbox{
		store:  s,
		user:   user,
		dir:    filepath.Join(s.root, user, maildirName),
		logger: s.logger.WithUser(user),
	}, nil
}

// Deliver delivers payload into user's mailbox and returns the message name.
func (s *Store) Deliver(user string, payload []byte) (string, error) {
	mb, err := s.Mailbox(user)
	if err != nil {
		return "", err
	}
	return mb.Deliver(payload)
}

// Consume prints and archives every unread message of user to w.
func (s *Store) Consume(user string, w io.Writer) (int, error) {
	mb, err := s.Mailbox(user)
	if err != nil {
		return 0, err
	}
	return mb.ConsumeAll(w)
}

// Provision creates user's mailbox directories. It is meant for operator
// setup; delivery and consumption never create directories.
func (s *Store) Provision(user string) (*Mailbox, error) {
	mb, err := s.Mailbox(user)
	if err != nil {
		return nil, err
	}
	for _, st := range States() {
		if err := s.fs.MkdirAll(mb.Path(st), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create %s directory for %s", st, user)
		}
	}
	mb.logger.Info("mailbox provisioned", "dir", mb.dir)
	return mb, nil
}

// ValidateUser checks that user can name a mailbox directory under the root.
func ValidateUser(user string) error {
	invalid := func(msg string) error {
		return errors.NewValidationError(msg).
			WithField("user").WithValue(user).WithCause(errors.ErrInvalidUser)
	}

	switch {
	case user == "":
		return invalid("user name is empty")
	case user == "." || user == "..":
		return invalid("user name is a relative directory reference")
	case strings.ContainsAny(user, `/\`):
		return invalid("user name contains a path separator")
	case strings.ContainsRune(user, 0):
		return invalid("user name contains a NUL byte")
	case strings.TrimSpace(user) != user:
		return invalid("user name has surrounding whitespace")
	}
	return nil
}
