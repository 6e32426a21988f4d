// Package keyword implements the iOS WDA keyword library on top of the
// locator, wait and gesture packages.
package keyword

import (
	"context"
	"time"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/element"
	"github.com/devicelab-dev/wdakit/pkg/gesture"
	"github.com/devicelab-dev/wdakit/pkg/locator"
	"github.com/devicelab-dev/wdakit/pkg/logger"
	"github.com/devicelab-dev/wdakit/pkg/wait"
)

// Client is the remote WDA surface the library drives.
// Implemented by *wda.Client and *mock.Device.
type Client interface {
	element.Session
	gesture.Performer

	WaitReady(ctx context.Context, timeout time.Duration) error
	CreateSession(ctx context.Context, bundleID string) error
	DeleteSession(ctx context.Context) error
	HasSession() bool
	ActivateApp(ctx context.Context, bundleID string) error
	TerminateApp(ctx context.Context, bundleID string) error
	Home(ctx context.Context) error
	WindowSize(ctx context.Context) (core.Size, error)
	Tap(ctx context.Context, x, y int) error
	TouchAndHold(ctx context.Context, x, y int, duration time.Duration) error
	Swipe(ctx context.Context, from, to core.Point, duration time.Duration) error
}

// Options configures a Library.
type Options struct {
	BundleID        string           // App opened by OpenApplication when none is given
	Timeout         time.Duration    // Default for wait keywords called without a timeout
	PollInterval    time.Duration    // Wait keyword poll interval
	ReadyTimeout    time.Duration    // How long OpenApplication waits for /status
	DefaultStrategy locator.Strategy // Strategy for locators without a prefix
	Poller          *wait.Poller     // Overrides PollInterval when set
}

// Defaults used for zero Options fields.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultReadyTimeout = 10 * time.Second
)

// Library is one keyword session against one device.
// It is not safe for concurrent use.
type Library struct {
	client   Client
	registry *element.Registry
	poller   *wait.Poller
	gestures *gesture.Composer
	opts     Options
	bundleID string
}

// New creates a library driving client.
func New(client Client, opts Options) *Library {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = wait.DefaultInterval
	}
	poller := opts.Poller
	if poller == nil {
		poller = wait.New(wait.WithInterval(opts.PollInterval))
	}
	return &Library{
		client:   client,
		registry: element.NewRegistry(client, element.WithDefaultStrategy(opts.DefaultStrategy)),
		poller:   poller,
		gestures: gesture.NewComposer(client),
		opts:     opts,
		bundleID: opts.BundleID,
	}
}

// Registry returns the strategy registry used to resolve locators.
func (l *Library) Registry() *element.Registry {
	return l.registry
}

// Poller returns the poller used by the wait keywords.
func (l *Library) Poller() *wait.Poller {
	return l.poller
}

// BundleID returns the bundle id of the application under test.
func (l *Library) BundleID() string {
	return l.bundleID
}

// Application lifecycle

// OpenApplication waits for WDA to answer and opens a session for bundleID.
// An empty bundleID uses the configured one.
func (l *Library) OpenApplication(ctx context.Context, bundleID string) error {
	if bundleID == "" {
		bundleID = l.opts.BundleID
	}
	if err := l.client.WaitReady(ctx, l.opts.ReadyTimeout); err != nil {
		return err
	}
	if err := l.client.CreateSession(ctx, bundleID); err != nil {
		return err
	}
	l.bundleID = bundleID
	return nil
}

// CloseApplication closes the WDA session.
func (l *Library) CloseApplication(ctx context.Context) error {
	return l.client.DeleteSession(ctx)
}

// LaunchApplication activates the application under test while the session
// stays open.
func (l *Library) LaunchApplication(ctx context.Context) error {
	bundleID, err := l.currentApp()
	if err != nil {
		return err
	}
	return l.client.ActivateApp(ctx, bundleID)
}

// QuitApplication terminates the application under test while the session
// stays open.
func (l *Library) QuitApplication(ctx context.Context) error {
	bundleID, err := l.currentApp()
	if err != nil {
		return err
	}
	return l.client.TerminateApp(ctx, bundleID)
}

// SwitchApplication terminates the current application, activates bundleID
// and makes it the application under test.
func (l *Library) SwitchApplication(ctx context.Context, bundleID string) error {
	if bundleID == "" {
		return core.ErrInvalidArgument.WithMessage("bundle id is required")
	}
	if l.bundleID != "" && l.bundleID != bundleID {
		if err := l.client.TerminateApp(ctx, l.bundleID); err != nil {
			return err
		}
	}
	if err := l.client.ActivateApp(ctx, bundleID); err != nil {
		return err
	}
	logger.Info("switched application %s -> %s", l.bundleID, bundleID)
	l.bundleID = bundleID
	return nil
}

// PressHomeButton presses the home button.
func (l *Library) PressHomeButton(ctx context.Context) error {
	return l.client.Home(ctx)
}

func (l *Library) currentApp() (string, error) {
	if !l.client.HasSession() {
		return "", core.ErrNoSession.WithMessage("no WDA session, call Open Application first")
	}
	if l.bundleID == "" {
		return "", core.ErrInvalidConfig.WithMessage("no bundle id configured")
	}
	return l.bundleID, nil
}

func (l *Library) resolve(descriptor string) (*element.Handle, error) {
	return l.registry.ResolveString(descriptor)
}
