// Package dispatch delivers one message to every user in a roster.
//
// A broadcast is best effort: deliveries run one after another in roster
// order, a failing recipient is recorded and skipped, and nothing is retried.
// The broadcast fails only when it delivered to nobody.
package dispatch

import (
	"strings"

	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/Iron-Ham/posthub/internal/event"
	"github.com/Iron-Ham/posthub/internal/logging"
)

// Deliverer delivers a payload into one user's mailbox.
// *mailbox.Store satisfies it.
type Deliverer interface {
	Deliver(user string, payload []byte) (string, error)
}

// Failure records a recipient the broadcast could not reach.
type Failure struct {
	User string
	Err  error
}

// Result summarizes a broadcast.
type Result struct {
	Attempted int
	Delivered int
	Failures  []Failure
}

// Dispatcher fans a message out over a roster.
type Dispatcher struct {
	deliverer Deliverer
	logger    *logging.Logger
	bus       *event.Bus
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithBus publishes a BroadcastCompletedEvent after every broadcast.
func WithBus(bus *event.Bus) Option {
	return func(d *Dispatcher) {
		d.bus = bus
	}
}

// New creates a Dispatcher delivering through deliverer.
func New(deliverer Deliverer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		deliverer: deliverer,
		logger:    logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DeliverToAll delivers payload to every non-blank roster entry. Partial
// failure is reported through Result.Failures only. When the roster is empty
// or every delivery fails the returned error is a *errors.DispatchError; the
// Result is returned in either case.
func (d *Dispatcher) DeliverToAll(roster []string, payload []byte) (Result, error) {
	var res Result
	for _, user := range roster {
		user = strings.TrimSpace(user)
		if user == "" {
			continue
		}
		res.Attempted++

		id, err := d.deliverer.Deliver(user, payload)
		if err != nil {
			d.logger.Warn("broadcast delivery failed", "user", user, "error", err.Error())
			res.Failures = append(res.Failures, Failure{User: user, Err: err})
			continue
		}
		d.logger.Debug("broadcast delivery", "user", user, "message", id)
		res.Delivered++
	}

	failed := make([]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		failed = append(failed, f.User)
	}
	d.bus.Publish(event.NewBroadcastCompletedEvent(res.Attempted, res.Delivered, failed))

	switch {
	case res.Attempted == 0:
		return res, errors.NewDispatchError("broadcast roster is empty", errors.ErrRosterEmpty).
			WithCounts(0, 0)
	case res.Delivered == 0:
		causes := []error{errors.ErrNoDeliveries}
		for _, f := range res.Failures {
			causes = append(causes, f.Err)
		}
		return res, errors.NewDispatchError("broadcast delivered to nobody", errors.Join(causes...)).
			WithCounts(res.Attempted, 0)
	}

	d.logger.Info("broadcast completed", "attempted", res.Attempted, "delivered", res.Delivered)
	return res, nil
}
