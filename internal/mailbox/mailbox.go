package mailbox

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/Iron-Ham/posthub/internal/logging"
)

// Mailbox is one user's directory triple.
type Mailbox struct {
	store  *Store
	user   string
	dir    string
	logger *logging.Logger
}

// User returns the mailbox owner.
func (m *Mailbox) User() string {
	return m.user
}

// Dir returns the Maildir directory containing the state subdirectories.
func (m *Mailbox) Dir() string {
	return m.dir
}

// Path returns the subdirectory holding messages in state st.
func (m *Mailbox) Path(st State) string {
	return filepath.Join(m.dir, st.Dir())
}

func (m *Mailbox) messagePath(st State, name string) string {
	return filepath.Join(m.dir, st.Dir(), name)
}

// Check verifies that all three state directories exist. The returned error
// matches errors.ErrMailboxNotFound and names the missing directories.
func (m *Mailbox) Check() error {
	var missing []error
	for _, st := range States() {
		info, err := m.store.fs.Stat(m.Path(st))
		switch {
		case err == nil && info.IsDir():
		case err == nil:
			missing = append(missing, errors.New(m.Path(st)+" is not a directory"))
		case os.IsNotExist(err):
			missing = append(missing, errors.New(m.Path(st)+" does not exist"))
		default:
			return errors.Wrapf(err, "stat %s", m.Path(st))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", m.user, errors.ErrMailboxNotFound, errors.Join(missing...))
}
