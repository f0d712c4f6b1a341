package mailbox

import (
	"io"
	"os"

	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/Iron-Ham/posthub/internal/event"
	"github.com/spf13/afero"
)

// ConsumeAll writes every unread message to w and moves it to the read set,
// returning how many were archived.
//
// Each message is emitted in full and terminated by a newline (one is added
// when the content lacks it) before it is renamed from new to cur. A message
// that vanishes before it is opened was taken by a concurrent consumer and is
// skipped. A message whose rename fails stays unread for a later call and is
// not counted. A write error on w stops consumption and is returned with the
// count so far; the message being written stays unread.
//
// When the unread directory cannot be listed ConsumeAll returns 0 and an
// *errors.ConsumptionError. The order in which messages are emitted is not
// specified.
func (m *Mailbox) ConsumeAll(w io.Writer) (int, error) {
	dir := m.Path(StateUnread)
	entries, err := afero.ReadDir(m.store.fs, dir)
	if err != nil {
		m.logger.Warn("cannot list unread messages", "dir", dir, "error", err.Error())
		return 0, errors.NewConsumptionError("list unread messages", err).
			WithUser(m.user).WithDir(dir)
	}

	consumed := 0
	for _, fi := range entries {
		if !fi.Mode().IsRegular() || !IsMessageName(fi.Name()) {
			continue
		}
		ok, err := m.consume(fi.Name(), w)
		if err != nil {
			return consumed, err
		}
		if ok {
			consumed++
		}
	}

	m.logger.Debug("consumption finished", "consumed", consumed)
	return consumed, nil
}

// consume emits and archives one message. It returns an error only when w
// fails.
func (m *Mailbox) consume(name string, w io.Writer) (bool, error) {
	src := m.messagePath(StateUnread, name)

	f, err := m.store.fs.Open(src)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("cannot open unread message", "message", name, "error", err.Error())
		}
		return false, nil
	}

	out := &trackingWriter{w: w}
	_, readErr := io.Copy(out, f)
	_ = f.Close()

	if out.err != nil {
		return false, errors.Wrapf(out.err, "write message %s", name)
	}
	if out.n == 0 || out.last != '\n' {
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return false, errors.Wrapf(err, "write message %s", name)
		}
	}
	if readErr != nil {
		m.deferMessage(name, errors.Wrap(readErr, "read message"))
		return false, nil
	}

	if err := m.store.fs.Rename(src, m.messagePath(StateRead, name)); err != nil {
		m.deferMessage(name, err)
		return false, nil
	}

	m.store.bus.Publish(event.NewMessageConsumedEvent(m.user, name, out.n))
	return true, nil
}

// deferMessage records that name stays unread after being emitted.
func (m *Mailbox) deferMessage(name string, err error) {
	m.logger.Warn("message left unread", "message", name, "error", err.Error())
	m.store.bus.Publish(event.NewMessageDeferredEvent(m.user, name, err))
}

// trackingWriter remembers how much was written, the final byte, and the
// first write error.
type trackingWriter struct {
	w    io.Writer
	n    int64
	last byte
	err  error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	t.n += int64(n)
	if n > 0 {
		t.last = p[n-1]
	}
	if err != nil {
		t.err = err
	}
	return n, err
}
