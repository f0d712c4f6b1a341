package mailbox

import (
	"context"
	"io"
	"time"

	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of directory events into one pass.
const watchDebounce = 50 * time.Millisecond

// Watch consumes pending messages to w, then keeps consuming whenever the
// unread directory changes until ctx is cancelled. onBatch, if non-nil, is
// called with the count after the initial pass and after every later pass
// that archived at least one message.
//
// Changes are detected with filesystem notifications, and the directory is
// also rescanned periodically in case a notification is missed. Watch needs
// the store to be backed by the operating system filesystem. It returns nil
// when ctx is cancelled, and returns early on a write error on w or when the
// watcher cannot be set up. Listing failures during watching are logged and
// retried on the next pass.
func (m *Mailbox) Watch(ctx context.Context, w io.Writer, onBatch func(int)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer func() { _ = watcher.Close() }()

	dir := m.Path(StateUnread)
	if err := watcher.Add(dir); err != nil {
		return errors.NewConsumptionError("watch unread messages", err).WithUser(m.user).WithDir(dir)
	}

	n, err := m.ConsumeAll(w)
	if err != nil {
		return err
	}
	if onBatch != nil {
		onBatch(n)
	}

	pass := func() error {
		n, err := m.ConsumeAll(w)
		if err != nil {
			var ce *errors.ConsumptionError
			if errors.As(err, &ce) {
				return nil
			}
			return err
		}
		if n > 0 && onBatch != nil {
			onBatch(n)
		}
		return nil
	}

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	poll := time.NewTicker(m.store.pollInterval)
	defer poll.Stop()

	m.logger.Debug("watching unread messages", "dir", dir)
	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			debounce.Reset(watchDebounce)

		case <-debounce.C:
			if err := pass(); err != nil {
				return err
			}

		case <-poll.C:
			if err := pass(); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("watcher error", "error", err.Error())
		}
	}
}
