package element

import (
	"context"
	"errors"
	"fmt"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/locator"
)

// LookupStatus is the outcome of querying the device for a handle.
type LookupStatus int

const (
	Found LookupStatus = iota
	NotFound
	TransportError
)

func (s LookupStatus) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case TransportError:
		return "transport error"
	default:
		return "unknown"
	}
}

// Lookup is the result of one query against the device.
type Lookup struct {
	Status LookupStatus
	IDs    []string // set when Status == Found
	Err    error    // set when Status == TransportError
}

// Handle is a lazily resolved reference to zero or more remote elements.
// Handles built by Registry.Resolve re-query the device on every call;
// handles returned by All are bound to one element id.
type Handle struct {
	session Session
	query   locator.Query
	desc    string
	id      string
}

// String describes the handle using its original locator.
func (h *Handle) String() string {
	return h.desc
}

// Query returns the remote query behind the handle.
func (h *Handle) Query() locator.Query {
	return h.query
}

// ID returns the bound element id, or "" for an unbound handle.
func (h *Handle) ID() string {
	return h.id
}

// Lookup queries the device once.
func (h *Handle) Lookup(ctx context.Context) Lookup {
	if h.id != "" {
		return Lookup{Status: Found, IDs: []string{h.id}}
	}
	ids, err := h.session.FindElements(ctx, h.query.Using, h.query.Value)
	switch {
	case errors.Is(err, core.ErrElementNotFound):
		return Lookup{Status: NotFound}
	case err != nil:
		return Lookup{Status: TransportError, Err: err}
	case len(ids) == 0:
		return Lookup{Status: NotFound}
	default:
		return Lookup{Status: Found, IDs: ids}
	}
}

// All returns one bound handle per current match.
func (h *Handle) All(ctx context.Context) ([]*Handle, error) {
	res := h.Lookup(ctx)
	switch res.Status {
	case TransportError:
		return nil, res.Err
	case NotFound:
		return nil, nil
	}
	handles := make([]*Handle, 0, len(res.IDs))
	for _, id := range res.IDs {
		handles = append(handles, &Handle{session: h.session, query: h.query, desc: h.desc, id: id})
	}
	return handles, nil
}

// Get resolves the first match, failing with ErrElementNotFound when there is none.
func (h *Handle) Get(ctx context.Context) (string, error) {
	res := h.Lookup(ctx)
	switch res.Status {
	case TransportError:
		return "", res.Err
	case NotFound:
		return "", core.ErrElementNotFound.WithMessagef("Element '%s' not found", h.desc)
	}
	return res.IDs[0], nil
}

// Exists reports whether at least one element matches right now.
func (h *Handle) Exists(ctx context.Context) (bool, error) {
	res := h.Lookup(ctx)
	if res.Status == TransportError {
		return false, res.Err
	}
	return res.Status == Found, nil
}

// Displayed reports whether any current match is displayed. Zero matches,
// matches that are all hidden and elements vanishing between the find and the
// displayed check are all reported as false.
func (h *Handle) Displayed(ctx context.Context) (bool, error) {
	res := h.Lookup(ctx)
	switch res.Status {
	case TransportError:
		return false, res.Err
	case NotFound:
		return false, nil
	}
	for _, id := range res.IDs {
		shown, err := h.session.ElementDisplayed(ctx, id)
		if errors.Is(err, core.ErrElementNotFound) {
			continue
		}
		if err != nil {
			return false, err
		}
		if shown {
			return true, nil
		}
	}
	return false, nil
}

// Attributes

// Label returns the accessibility label.
func (h *Handle) Label(ctx context.Context) (string, error) {
	return h.attribute(ctx, "label")
}

// Value returns the element value.
func (h *Handle) Value(ctx context.Context) (string, error) {
	return h.attribute(ctx, "value")
}

// Name returns the element's name attribute (accessibility identifier).
func (h *Handle) Name(ctx context.Context) (string, error) {
	return h.attribute(ctx, "name")
}

// Text returns the label, falling back to the value when the label is empty.
func (h *Handle) Text(ctx context.Context) (string, error) {
	id, err := h.Get(ctx)
	if err != nil {
		return "", err
	}
	label, err := h.session.ElementAttribute(ctx, id, "label")
	if err != nil {
		return "", err
	}
	if label != "" {
		return label, nil
	}
	return h.session.ElementAttribute(ctx, id, "value")
}

// Enabled reports whether the element is enabled.
func (h *Handle) Enabled(ctx context.Context) (bool, error) {
	id, err := h.Get(ctx)
	if err != nil {
		return false, err
	}
	return h.session.ElementEnabled(ctx, id)
}

// Visible reports the element's visible attribute.
func (h *Handle) Visible(ctx context.Context) (bool, error) {
	id, err := h.Get(ctx)
	if err != nil {
		return false, err
	}
	return h.session.ElementVisible(ctx, id)
}

// Accessible reports whether the element is accessible.
func (h *Handle) Accessible(ctx context.Context) (bool, error) {
	id, err := h.Get(ctx)
	if err != nil {
		return false, err
	}
	return h.session.ElementAccessible(ctx, id)
}

// Bounds returns the element's current frame.
func (h *Handle) Bounds(ctx context.Context) (core.Bounds, error) {
	id, err := h.Get(ctx)
	if err != nil {
		return core.Bounds{}, err
	}
	return h.session.ElementRect(ctx, id)
}

func (h *Handle) attribute(ctx context.Context, name string) (string, error) {
	id, err := h.Get(ctx)
	if err != nil {
		return "", err
	}
	return h.session.ElementAttribute(ctx, id, name)
}

// Actions

// Click taps the element.
func (h *Handle) Click(ctx context.Context) error {
	return h.act(ctx, "click", func(id string) error {
		return h.session.ElementClick(ctx, id)
	})
}

// ClearText clears a text field.
func (h *Handle) ClearText(ctx context.Context) error {
	return h.act(ctx, "clear text", func(id string) error {
		return h.session.ElementClear(ctx, id)
	})
}

// SetText types text into the element.
func (h *Handle) SetText(ctx context.Context, text string) error {
	return h.act(ctx, "set text", func(id string) error {
		return h.session.ElementSendKeys(ctx, id, text)
	})
}

// Pinch pinches (scale < 1) or spreads (scale > 1) on the element.
func (h *Handle) Pinch(ctx context.Context, scale, velocity float64) error {
	return h.act(ctx, "pinch", func(id string) error {
		return h.session.ElementPinch(ctx, id, scale, velocity)
	})
}

func (h *Handle) act(ctx context.Context, action string, fn func(id string) error) error {
	id, err := h.Get(ctx)
	if err != nil {
		return err
	}
	if err := fn(id); err != nil {
		return fmt.Errorf("%s on '%s': %w", action, h.desc, err)
	}
	return nil
}
