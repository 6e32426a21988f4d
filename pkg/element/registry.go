// Package element resolves locators into lazy handles on the remote device.
package element

import (
	"context"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/locator"
)

// Session is the remote-session surface element handles need.
// Implemented by *wda.Client.
type Session interface {
	FindElements(ctx context.Context, using, value string) ([]string, error)

	ElementAttribute(ctx context.Context, elementID, name string) (string, error)
	ElementEnabled(ctx context.Context, elementID string) (bool, error)
	ElementDisplayed(ctx context.Context, elementID string) (bool, error)
	ElementVisible(ctx context.Context, elementID string) (bool, error)
	ElementAccessible(ctx context.Context, elementID string) (bool, error)
	ElementRect(ctx context.Context, elementID string) (core.Bounds, error)

	ElementClick(ctx context.Context, elementID string) error
	ElementClear(ctx context.Context, elementID string) error
	ElementSendKeys(ctx context.Context, elementID, text string) error
	ElementPinch(ctx context.Context, elementID string, scale, velocity float64) error
}

// Resolver turns locator criteria into the query a strategy issues.
type Resolver func(criteria string) locator.Query

// Registry dispatches locators to their strategy's resolver.
type Registry struct {
	session         Session
	defaultStrategy locator.Strategy
	resolvers       map[locator.Strategy]Resolver
}

// Option configures a Registry.
type Option func(*Registry)

// WithDefaultStrategy sets the strategy used for locators without a prefix.
func WithDefaultStrategy(s locator.Strategy) Option {
	return func(r *Registry) {
		r.defaultStrategy = s
	}
}

// NewRegistry creates a registry bound to session. The default strategy is id.
func NewRegistry(session Session, opts ...Option) *Registry {
	r := &Registry{
		session:         session,
		defaultStrategy: locator.StrategyID,
		resolvers:       make(map[locator.Strategy]Resolver, len(locator.Strategies)),
	}
	for _, s := range locator.Strategies {
		r.resolvers[s] = s.Query
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session returns the session handles are bound to.
func (r *Registry) Session() Session {
	return r.session
}

// DefaultStrategy returns the strategy used for prefix-less locators.
func (r *Registry) DefaultStrategy() locator.Strategy {
	return r.defaultStrategy
}

// Strategy returns the strategy a locator dispatches to.
func (r *Registry) Strategy(loc locator.Locator) (locator.Strategy, error) {
	if !loc.HasPrefix() {
		return r.defaultStrategy, nil
	}
	return locator.ParseStrategy(loc.Prefix)
}

// Query builds the remote query for a locator without issuing it.
func (r *Registry) Query(loc locator.Locator) (locator.Query, error) {
	s, err := r.Strategy(loc)
	if err != nil {
		return locator.Query{}, err
	}
	return r.resolvers[s](loc.Criteria), nil
}

// Resolve returns a lazy handle for loc. No remote call is made; whether the
// element exists is checked by the handle's methods.
func (r *Registry) Resolve(loc locator.Locator) (*Handle, error) {
	q, err := r.Query(loc)
	if err != nil {
		return nil, err
	}
	return &Handle{session: r.session, query: q, desc: loc.String()}, nil
}

// ResolveString parses descriptor and resolves it.
func (r *Registry) ResolveString(descriptor string) (*Handle, error) {
	loc, err := locator.Parse(descriptor)
	if err != nil {
		return nil, err
	}
	return r.Resolve(loc)
}

// ResolveQuery returns a lazy handle for a raw query, used for text xpaths.
func (r *Registry) ResolveQuery(q locator.Query) *Handle {
	return &Handle{session: r.session, query: q, desc: q.String()}
}

// ResolveAll queries the device once and returns one bound handle per match.
// Zero matches is not an error.
func (r *Registry) ResolveAll(ctx context.Context, loc locator.Locator) ([]*Handle, error) {
	h, err := r.Resolve(loc)
	if err != nil {
		return nil, err
	}
	return h.All(ctx)
}
