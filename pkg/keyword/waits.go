package keyword

import (
	"context"
	"errors"
	"time"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/wait"
)

// WaitUntilPageContains waits until text is displayed.
func (l *Library) WaitUntilPageContains(ctx context.Context, text string, timeout time.Duration) error {
	err := l.poller.Until(ctx, l.textPresent(text), timeout)
	return timedOut(err, "Text '%s' did not appear in %v", text, timeout)
}

// WaitUntilPageDoesNotContain waits until text is no longer displayed.
func (l *Library) WaitUntilPageDoesNotContain(ctx context.Context, text string, timeout time.Duration) error {
	err := l.poller.UntilNot(ctx, l.textPresent(text), timeout)
	return timedOut(err, "Text '%s' still present after %v", text, timeout)
}

// WaitUntilPageContainsElement waits until an element matching descriptor is displayed.
func (l *Library) WaitUntilPageContainsElement(ctx context.Context, descriptor string, timeout time.Duration) error {
	probe, err := l.elementPresent(descriptor)
	if err != nil {
		return err
	}
	err = l.poller.Until(ctx, probe, timeout)
	return timedOut(err, "Element '%s' did not appear in %v", descriptor, timeout)
}

// WaitUntilPageDoesNotContainElement waits until no element matching descriptor is displayed.
func (l *Library) WaitUntilPageDoesNotContainElement(ctx context.Context, descriptor string, timeout time.Duration) error {
	probe, err := l.elementPresent(descriptor)
	if err != nil {
		return err
	}
	err = l.poller.UntilNot(ctx, probe, timeout)
	return timedOut(err, "Element '%s' still present after %v", descriptor, timeout)
}

// timedOut replaces the poller's generic timeout message with one naming
// what was waited for. Other errors pass through.
func timedOut(err error, format string, args ...interface{}) error {
	if err == nil || !errors.Is(err, core.ErrWaitTimeout) {
		return err
	}
	return core.ErrWaitTimeout.WithMessagef(format, args...)
}

// ParseTimeout parses a wait keyword timeout, using the library default for "".
func (l *Library) ParseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return l.opts.Timeout, nil
	}
	return wait.ParseTimeout(s)
}
