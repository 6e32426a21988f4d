// Package wait implements bounded-timeout polling for UI conditions.
//
// A Poller evaluates a Probe on the calling goroutine, sleeping between
// evaluations, until the probe reports the wanted value or the deadline
// passes. The probe always runs at least once, even with a zero timeout,
// and no sleep follows a successful evaluation.
package wait

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/devicelab-dev/wdakit/pkg/core"
)

// DefaultInterval is the pause between two probe evaluations.
const DefaultInterval = 200 * time.Millisecond

// Probe reports the current state of a condition. A non-nil error aborts the wait.
type Probe func(ctx context.Context) (bool, error)

// Not inverts a probe.
func Not(p Probe) Probe {
	return func(ctx context.Context) (bool, error) {
		ok, err := p(ctx)
		return !ok, err
	}
}

// Poller runs probes until they succeed or time out.
type Poller struct {
	interval time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the pause between probe evaluations.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock replaces the time source and sleep function.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Poller) {
		p.now = now
		p.sleep = sleep
	}
}

// New creates a Poller.
func New(opts ...Option) *Poller {
	p := &Poller{
		interval: DefaultInterval,
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the configured poll interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Until waits until probe reports true.
func (p *Poller) Until(ctx context.Context, probe Probe, timeout time.Duration) error {
	return p.poll(ctx, probe, timeout, true)
}

// UntilNot waits until probe reports false.
func (p *Poller) UntilNot(ctx context.Context, probe Probe, timeout time.Duration) error {
	return p.poll(ctx, probe, timeout, false)
}

func (p *Poller) poll(ctx context.Context, probe Probe, timeout time.Duration, want bool) error {
	if timeout < 0 {
		return core.ErrInvalidArgument.WithMessagef("negative wait timeout %v", timeout)
	}

	deadline := p.now().Add(timeout)
	for {
		ok, err := probe(ctx)
		if err != nil {
			return err
		}
		if ok == want {
			return nil
		}
		if !p.now().Before(deadline) {
			return core.ErrWaitTimeout.WithMessagef("condition not met within %v", timeout)
		}
		if err := p.sleep(ctx, p.interval); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Condition is a self-contained wait: a probe, a timeout, an interval and
// whether success means the probe turning false.
type Condition struct {
	Probe    Probe
	Timeout  time.Duration
	Interval time.Duration
	Invert   bool
}

// Run executes the wait with a fresh Poller.
func (s Condition) Run(ctx context.Context) error {
	p := New(WithInterval(s.Interval))
	if s.Invert {
		return p.UntilNot(ctx, s.Probe, s.Timeout)
	}
	return p.Until(ctx, s.Probe, s.Timeout)
}

const maxTimeoutSeconds = math.MaxInt64 / int64(time.Second)

// ParseTimeout parses a whole-second timeout such as "10s" or "10".
func ParseTimeout(s string) (time.Duration, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "s"))

	secs, err := strconv.Atoi(raw)
	if err != nil || raw == "" || strings.HasPrefix(raw, "+") {
		return 0, core.ErrMalformedTimeout.WithMessagef("malformed timeout %q: expected whole seconds like \"10s\"", s)
	}
	if secs < 0 {
		return 0, core.ErrMalformedTimeout.WithMessagef("malformed timeout %q: must not be negative", s)
	}
	if int64(secs) > maxTimeoutSeconds {
		return 0, core.ErrMalformedTimeout.WithMessagef("malformed timeout %q: too large", s)
	}
	return time.Duration(secs) * time.Second, nil
}
