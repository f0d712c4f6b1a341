package mailbox

import (
	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/spf13/afero"
)

// List returns the messages currently in state st, sorted by name.
func (m *Mailbox) List(st State) ([]Message, error) {
	dir := m.Path(st)
	entries, err := afero.ReadDir(m.store.fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s messages of %s", st, m.user)
	}

	msgs := make([]Message, 0, len(entries))
	for _, fi := range entries {
		if !fi.Mode().IsRegular() || !IsMessageName(fi.Name()) {
			continue
		}
		msgs = append(msgs, Message{
			Name:    fi.Name(),
			State:   st,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	sortMessages(msgs)
	return msgs, nil
}

// Counts returns the number of messages in each state. Messages in staging
// are leftovers of interrupted deliveries unless one is in flight.
func (m *Mailbox) Counts() (Counts, error) {
	var c Counts
	for _, st := range States() {
		msgs, err := m.List(st)
		if err != nil {
			return Counts{}, err
		}
		switch st {
		case StateStaging:
			c.Staging = len(msgs)
		case StateUnread:
			c.Unread = len(msgs)
		case StateRead:
			c.Read = len(msgs)
		}
	}
	return c, nil
}
