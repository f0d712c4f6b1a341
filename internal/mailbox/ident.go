package mailbox

import (
	"fmt"
	"os"
	"time"

	"github.com/Iron-Ham/posthub/internal/errors"
	"go.uber.org/atomic"
)

// DefaultMaxAttempts covers every combination of the differentiator and
// counter digits for one second.
const DefaultMaxAttempts = 256

// Generator allocates message names of the form XXXXXXXX.MSG: six hex digits
// of the Unix time in seconds, one digit identifying the process and one
// per-call counter digit. It owns its counter, so independent generators never
// share state.
type Generator struct {
	clock       func() time.Time
	diff        uint8
	maxAttempts int
	counter     atomic.Uint32
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock replaces time.Now as the time source.
func WithClock(clock func() time.Time) GeneratorOption {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithDifferentiator sets the process digit. Only the low four bits are used.
func WithDifferentiator(d uint8) GeneratorOption {
	return func(g *Generator) {
		g.diff = d & 0xF
	}
}

// WithMaxAttempts bounds the number of candidate names tried per call.
// Values outside 1..256 are ignored.
func WithMaxAttempts(n int) GeneratorOption {
	return func(g *Generator) {
		if n >= 1 && n <= DefaultMaxAttempts {
			g.maxAttempts = n
		}
	}
}

// NewGenerator creates a Generator. By default the process digit is derived
// from the pid.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		clock:       time.Now,
		diff:        uint8(os.Getpid() & 0xF),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// MaxAttempts returns the per-call candidate bound.
func (g *Generator) MaxAttempts() int {
	return g.maxAttempts
}

// Next returns a name for which exists reports false. On a collision the
// low byte (process digit and counter digit together) is advanced and the
// next candidate probed. When every allowed candidate is taken Next returns
// an error matching errors.ErrIdentifierExhausted; a probe error is returned
// as is.
func (g *Generator) Next(exists func(name string) (bool, error)) (string, error) {
	stamp := uint32(g.clock().Unix()) & 0xFFFFFF
	seq := uint8(g.counter.Inc()-1) & 0xF
	low := g.diff<<4 | seq

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		name := formatName(stamp, low)
		taken, err := exists(name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
		low++
	}

	return "", errors.Wrapf(errors.ErrIdentifierExhausted,
		"%d candidates for %06X taken", g.maxAttempts, stamp)
}

func formatName(stamp uint32, low uint8) string {
	return fmt.Sprintf("%06X%02X%s", stamp, low, MessageExt)
}
