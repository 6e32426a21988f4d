// Package mock provides an in-memory WebDriverAgent session for testing
// without a real device.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/locator"
)

// Element is a fake UI element.
type Element struct {
	ID         string
	Label      string
	Value      string
	Name       string
	Type       string
	Enabled    bool
	Displayed  bool
	Visible    bool
	Accessible bool
	Bounds     core.Bounds

	// Gone makes reads fail with "no such element", as for an element that
	// disappeared between the find and the read.
	Gone bool
}

// NewElement returns an enabled, displayed, visible, accessible element.
func NewElement(id string) *Element {
	return &Element{
		ID:         id,
		Type:       "XCUIElementTypeOther",
		Enabled:    true,
		Displayed:  true,
		Visible:    true,
		Accessible: true,
	}
}

// Call records one method invocation.
type Call struct {
	Method string
	Args   []interface{}
}

// Device is a fake WDA session. Configure it by setting fields before use.
type Device struct {
	mu sync.Mutex

	// Matches maps a query to the elements it finds.
	Matches map[locator.Query][]*Element
	// FindFunc, when set, overrides Matches. n is the 1-based call count for q.
	FindFunc func(q locator.Query, n int) ([]*Element, error)
	// FindErr fails every find.
	FindErr error

	// Gesture responses: the raw "value" returned and an optional error.
	TouchValue   interface{}
	TouchErr     error
	ActionsValue interface{}
	ActionsErr   error

	Size      core.Size
	BundleID  string
	SessionID string
	ReadyErr  error

	Calls      []Call
	Touches    []interface{}
	Actions    []interface{}
	findCounts map[locator.Query]int
	typed      map[string]string
	known      map[string]*Element
}

// New creates an empty device whose touch endpoint accepts every gesture.
func New() *Device {
	return &Device{
		Matches:    make(map[locator.Query][]*Element),
		TouchValue: true,
		Size:       core.Size{Width: 390, Height: 844},
		findCounts: make(map[locator.Query]int),
		typed:      make(map[string]string),
		known:      make(map[string]*Element),
	}
}

// Add registers elements found by q.
func (d *Device) Add(q locator.Query, elems ...*Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Matches[q] = append(d.Matches[q], elems...)
	for _, e := range elems {
		d.known[e.ID] = e
	}
}

// FindCount returns how many times q was queried.
func (d *Device) FindCount(q locator.Query) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findCounts[q]
}

// Typed returns the text typed into an element.
func (d *Device) Typed(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.typed[id]
}

// CallsTo returns the recorded calls of one method.
func (d *Device) CallsTo(method string) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Call
	for _, c := range d.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (d *Device) record(method string, args ...interface{}) {
	d.Calls = append(d.Calls, Call{Method: method, Args: args})
}

func (d *Device) lookup(id string) (*Element, error) {
	if e, ok := d.known[id]; ok && !e.Gone {
		return e, nil
	}
	return nil, core.ErrElementNotFound.WithMessagef("no such element: %s", id)
}

// Session lifecycle

// WaitReady returns ReadyErr.
func (d *Device) WaitReady(_ context.Context, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("WaitReady", timeout)
	return d.ReadyErr
}

// CreateSession starts a fake session.
func (d *Device) CreateSession(_ context.Context, bundleID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CreateSession", bundleID)
	d.BundleID = bundleID
	d.SessionID = "mock-session"
	return nil
}

// DeleteSession ends the fake session.
func (d *Device) DeleteSession(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteSession")
	d.SessionID = ""
	return nil
}

// HasSession reports whether CreateSession was called.
func (d *Device) HasSession() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.SessionID != ""
}

// ActivateApp records the call.
func (d *Device) ActivateApp(_ context.Context, bundleID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ActivateApp", bundleID)
	return nil
}

// TerminateApp records the call.
func (d *Device) TerminateApp(_ context.Context, bundleID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("TerminateApp", bundleID)
	return nil
}

// Home records the call.
func (d *Device) Home(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Home")
	return nil
}

// WindowSize returns Size.
func (d *Device) WindowSize(_ context.Context) (core.Size, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("WindowSize")
	return d.Size, nil
}

// Tap records the call.
func (d *Device) Tap(_ context.Context, x, y int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Tap", x, y)
	return nil
}

// TouchAndHold records the call.
func (d *Device) TouchAndHold(_ context.Context, x, y int, duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("TouchAndHold", x, y, duration)
	return nil
}

// Swipe records the call.
func (d *Device) Swipe(_ context.Context, from, to core.Point, duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Swipe", from, to, duration)
	return nil
}

// TouchPerform records body and returns TouchValue/TouchErr.
func (d *Device) TouchPerform(_ context.Context, body interface{}) (interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("TouchPerform", body)
	d.Touches = append(d.Touches, body)
	return d.TouchValue, d.TouchErr
}

// PerformActions records body and returns ActionsValue/ActionsErr.
func (d *Device) PerformActions(_ context.Context, body interface{}) (interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("PerformActions", body)
	d.Actions = append(d.Actions, body)
	return d.ActionsValue, d.ActionsErr
}

// Element finding

// FindElements returns the ids registered for the query.
func (d *Device) FindElements(_ context.Context, using, value string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	q := locator.Query{Using: using, Value: value}
	d.findCounts[q]++
	d.record("FindElements", using, value)

	if d.FindErr != nil {
		return nil, d.FindErr
	}

	elems := d.Matches[q]
	if d.FindFunc != nil {
		var err error
		elems, err = d.FindFunc(q, d.findCounts[q])
		if err != nil {
			return nil, err
		}
	}

	ids := make([]string, 0, len(elems))
	for _, e := range elems {
		d.known[e.ID] = e
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// Element reads

// ElementAttribute returns label, value, name, type or visible.
func (d *Device) ElementAttribute(_ context.Context, id, name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ElementAttribute", id, name)

	e, err := d.lookup(id)
	if err != nil {
		return "", err
	}
	switch name {
	case "label":
		return e.Label, nil
	case "value":
		return e.Value, nil
	case "name":
		return e.Name, nil
	case "type":
		return e.Type, nil
	case "visible":
		return fmt.Sprintf("%v", e.Visible), nil
	}
	return "", nil
}

// ElementEnabled returns Enabled.
func (d *Device) ElementEnabled(_ context.Context, id string) (bool, error) {
	return d.boolProp("ElementEnabled", id, func(e *Element) bool { return e.Enabled })
}

// ElementDisplayed returns Displayed.
func (d *Device) ElementDisplayed(_ context.Context, id string) (bool, error) {
	return d.boolProp("ElementDisplayed", id, func(e *Element) bool { return e.Displayed })
}

// ElementVisible returns Visible.
func (d *Device) ElementVisible(_ context.Context, id string) (bool, error) {
	return d.boolProp("ElementVisible", id, func(e *Element) bool { return e.Visible })
}

// ElementAccessible returns Accessible.
func (d *Device) ElementAccessible(_ context.Context, id string) (bool, error) {
	return d.boolProp("ElementAccessible", id, func(e *Element) bool { return e.Accessible })
}

// ElementRect returns Bounds.
func (d *Device) ElementRect(_ context.Context, id string) (core.Bounds, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ElementRect", id)

	e, err := d.lookup(id)
	if err != nil {
		return core.Bounds{}, err
	}
	return e.Bounds, nil
}

func (d *Device) boolProp(method, id string, get func(*Element) bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(method, id)

	e, err := d.lookup(id)
	if err != nil {
		return false, err
	}
	return get(e), nil
}

// Element actions

// ElementClick records the click.
func (d *Device) ElementClick(_ context.Context, id string) error {
	return d.act("ElementClick", id, nil)
}

// ElementClear empties the element's value.
func (d *Device) ElementClear(_ context.Context, id string) error {
	return d.act("ElementClear", id, func(e *Element) {
		e.Value = ""
		d.typed[id] = ""
	})
}

// ElementSendKeys appends text to the element's value.
func (d *Device) ElementSendKeys(_ context.Context, id, text string) error {
	return d.act("ElementSendKeys", id, func(e *Element) {
		e.Value += text
		d.typed[id] += text
	}, text)
}

// ElementPinch records the pinch.
func (d *Device) ElementPinch(_ context.Context, id string, scale, velocity float64) error {
	return d.act("ElementPinch", id, nil, scale, velocity)
}

func (d *Device) act(method, id string, apply func(*Element), args ...interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(method, append([]interface{}{id}, args...)...)

	e, err := d.lookup(id)
	if err != nil {
		return err
	}
	if apply != nil {
		apply(e)
	}
	return nil
}
