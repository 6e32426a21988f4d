package keyword

import (
	"context"
	"errors"
	"time"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/locator"
	"github.com/devicelab-dev/wdakit/pkg/logger"
)

// DefaultHideKeyboardKey is the key tapped by HideKeyboard when none is given.
const DefaultHideKeyboardKey = "Done"

// GetText returns the element's label, or its value when the label is empty.
func (l *Library) GetText(ctx context.Context, descriptor string) (string, error) {
	h, err := l.resolve(descriptor)
	if err != nil {
		return "", err
	}
	text, err := h.Text(ctx)
	if err != nil {
		return "", err
	}
	logger.Info("Element '%s' text is '%s'", descriptor, text)
	return text, nil
}

// ClearText clears the text field identified by descriptor.
func (l *Library) ClearText(ctx context.Context, descriptor string) error {
	h, err := l.resolve(descriptor)
	if err != nil {
		return err
	}
	return h.ClearText(ctx)
}

// InputText types text into the field identified by descriptor.
func (l *Library) InputText(ctx context.Context, descriptor, text string) error {
	h, err := l.resolve(descriptor)
	if err != nil {
		return err
	}
	return h.SetText(ctx, text)
}

// ClickAPoint taps at (x, y). A positive duration presses and holds.
func (l *Library) ClickAPoint(ctx context.Context, p core.Point, duration time.Duration) error {
	if duration > 0 {
		return l.client.TouchAndHold(ctx, p.X, p.Y, duration)
	}
	return l.client.Tap(ctx, p.X, p.Y)
}

// ClickElement taps the first element matching descriptor.
func (l *Library) ClickElement(ctx context.Context, descriptor string) error {
	h, err := l.resolve(descriptor)
	if err != nil {
		return err
	}
	return h.Click(ctx)
}

// ClickText taps the first element whose label or value contains text, or
// equals it when exact is set.
func (l *Library) ClickText(ctx context.Context, text string, exact bool) error {
	q := locator.Query{Using: "xpath", Value: locator.TextXPath(text, exact)}
	h := l.registry.ResolveQuery(q)
	if _, err := h.Get(ctx); err != nil {
		if errors.Is(err, core.ErrElementNotFound) {
			return core.ErrElementNotFound.WithMessagef("Text '%s' not found", text).WithCause(err)
		}
		return err
	}
	return h.Click(ctx)
}

// Swipe drags from one point to another over duration.
func (l *Library) Swipe(ctx context.Context, from, to core.Point, duration time.Duration) error {
	return l.client.Swipe(ctx, from, to, duration)
}

// HideKeyboard dismisses the keyboard by tapping the key labelled keyName.
func (l *Library) HideKeyboard(ctx context.Context, keyName string) error {
	if keyName == "" {
		keyName = DefaultHideKeyboardKey
	}
	return l.ClickText(ctx, keyName, true)
}

// GetElementAttribute returns the element's value or name attribute.
func (l *Library) GetElementAttribute(ctx context.Context, descriptor, attr string) (string, error) {
	h, err := l.resolve(descriptor)
	if err != nil {
		return "", err
	}
	var v string
	switch attr {
	case "value":
		v, err = h.Value(ctx)
	case "name":
		v, err = h.Name(ctx)
	default:
		return "", core.ErrUnsupportedAttribute.WithMessagef("attribute '%s' is not supported, use value or name", attr)
	}
	if err != nil {
		return "", err
	}
	logger.Info("Element '%s' %s: %s", descriptor, attr, v)
	return v, nil
}

// GetElementLocation returns the element's frame as x, y, width and height.
func (l *Library) GetElementLocation(ctx context.Context, descriptor string) (map[string]float64, error) {
	h, err := l.resolve(descriptor)
	if err != nil {
		return nil, err
	}
	b, err := h.Bounds(ctx)
	if err != nil {
		return nil, err
	}
	return b.Location(), nil
}

// GetWindowWidth returns the screen width in points.
func (l *Library) GetWindowWidth(ctx context.Context) (int, error) {
	size, err := l.client.WindowSize(ctx)
	if err != nil {
		return 0, err
	}
	return size.Width, nil
}

// GetWindowHeight returns the screen height in points.
func (l *Library) GetWindowHeight(ctx context.Context) (int, error) {
	size, err := l.client.WindowSize(ctx)
	if err != nil {
		return 0, err
	}
	return size.Height, nil
}
