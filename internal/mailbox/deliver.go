package mailbox

import (
	"os"

	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/Iron-Ham/posthub/internal/event"
	"github.com/spf13/afero"
)

// Deliver writes payload into the mailbox and publishes it as unread. It
// returns the message name.
//
// The payload is written to a file created exclusively in tmp, flushed to
// stable storage and closed, then renamed into new. Any failure removes the
// staged file, so the message is either fully unread or absent. Failures are
// returned as *errors.DeliveryError and are never retried here.
func (m *Mailbox) Deliver(payload []byte) (string, error) {
	if err := m.Check(); err != nil {
		return "", m.deliveryFailed(
			errors.NewDeliveryError("mailbox unavailable", err).WithStage(errors.StageStage))
	}

	name, f, err := m.stage()
	if err != nil {
		return "", m.deliveryFailed(err)
	}
	staged := m.messagePath(StateStaging, name)

	if err := writeAndFlush(f, payload); err != nil {
		_ = m.store.fs.Remove(staged)
		err.WithMessageID(name)
		return "", m.deliveryFailed(err)
	}

	if err := m.store.fs.Rename(staged, m.messagePath(StateUnread, name)); err != nil {
		_ = m.store.fs.Remove(staged)
		return "", m.deliveryFailed(
			errors.NewDeliveryError("publish into unread", err).
				WithMessageID(name).WithStage(errors.StagePublish))
	}

	m.logger.Debug("message delivered", "message", name, "size", len(payload))
	m.store.bus.Publish(event.NewMessageDeliveredEvent(m.user, name, len(payload)))
	return name, nil
}

// stage allocates a name and creates its staging file exclusively. Losing a
// creation race to another process allocates a fresh name; the generator's
// attempt bound also bounds these retries.
func (m *Mailbox) stage() (string, afero.File, *errors.DeliveryError) {
	gen := m.store.gen
	for attempt := 0; attempt < gen.MaxAttempts(); attempt++ {
		name, err := gen.Next(m.nameTaken)
		if err != nil {
			return "", nil, errors.NewDeliveryError("allocate message name", err).
				WithStage(errors.StageGenerate).
				WithRetryable(!errors.Is(err, errors.ErrIdentifierExhausted))
		}

		staged := m.messagePath(StateStaging, name)
		f, err := m.store.fs.OpenFile(staged, os.O_WRONLY|os.O_CREATE|os.O_EXCL, m.store.fileMode)
		if err != nil {
			if !os.IsExist(err) {
				return "", nil, errors.NewDeliveryError("create staging file", err).
					WithMessageID(name).WithStage(errors.StageStage)
			}
			m.logger.Debug("staging name taken, retrying", "message", name)
			continue
		}

		// Another delivery may have published the same name between the
		// probe and the create.
		published, err := m.published(name)
		if err == nil && !published {
			return name, f, nil
		}
		_ = f.Close()
		_ = m.store.fs.Remove(staged)
		if err != nil {
			return "", nil, errors.NewDeliveryError("create staging file", err).
				WithMessageID(name).WithStage(errors.StageStage)
		}
		m.logger.Debug("name published concurrently, retrying", "message", name)
	}

	return "", nil, errors.NewDeliveryError("allocate message name", errors.ErrIdentifierExhausted).
		WithStage(errors.StageGenerate).WithRetryable(false)
}

// nameTaken reports whether name exists in any state directory, so that a
// publish rename can never replace an existing message.
func (m *Mailbox) nameTaken(name string) (bool, error) {
	for _, st := range States() {
		_, err := m.store.fs.Stat(m.messagePath(st, name))
		if err == nil {
			return true, nil
		}
		if !os.IsNotExist(err) {
			return false, errors.Wrapf(err, "probe %s", name)
		}
	}
	return false, nil
}

// published reports whether name is unread or read. Messages only move from
// new to cur, so checking in that order cannot miss one in transit.
func (m *Mailbox) published(name string) (bool, error) {
	for _, st := range []State{StateUnread, StateRead} {
		_, err := m.store.fs.Stat(m.messagePath(st, name))
		if err == nil {
			return true, nil
		}
		if !os.IsNotExist(err) {
			return false, errors.Wrapf(err, "probe %s", name)
		}
	}
	return false, nil
}

// writeAndFlush writes payload in full, syncs and closes f. f is closed on
// every path.
func writeAndFlush(f afero.File, payload []byte) *errors.DeliveryError {
	if _, err := f.Write(payload); err != nil {
		_ = f.Close()
		return errors.NewDeliveryError("write staged message", err).WithStage(errors.StageWrite)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return errors.NewDeliveryError("flush staged message", err).WithStage(errors.StageSync)
	}
	if err := f.Close(); err != nil {
		return errors.NewDeliveryError("close staged message", err).WithStage(errors.StageWrite)
	}
	return nil
}

func (m *Mailbox) deliveryFailed(err *errors.DeliveryError) error {
	err.WithUser(m.user)
	m.logger.Warn("delivery failed",
		"stage", string(err.Stage), "message", err.MessageID, "error", err.Error())
	m.store.bus.Publish(event.NewDeliveryFailedEvent(m.user, string(err.Stage), err))
	return err
}
