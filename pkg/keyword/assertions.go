package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/element"
	"github.com/devicelab-dev/wdakit/pkg/locator"
	"github.com/devicelab-dev/wdakit/pkg/logger"
	"github.com/devicelab-dev/wdakit/pkg/wait"
)

// failf returns ErrAssertionFailed with message, or with the default when
// message is empty.
func failf(message, format string, args ...interface{}) error {
	if message == "" {
		message = fmt.Sprintf(format, args...)
	}
	return core.ErrAssertionFailed.WithMessage(message)
}

// ElementAttributeShouldMatch fails unless attr of the element matches pattern.
func (l *Library) ElementAttributeShouldMatch(ctx context.Context, descriptor, attr, pattern string) error {
	h, err := l.resolve(descriptor)
	if err != nil {
		return err
	}
	ok, err := element.AttributeMatches(ctx, h, attr, pattern)
	if err != nil {
		return err
	}
	if !ok {
		return failf("", "Element '%s' attribute '%s' should have matched '%s' but did not", descriptor, attr, pattern)
	}
	return nil
}

// ElementShouldBeVisible fails unless the element's visible attribute is set.
func (l *Library) ElementShouldBeVisible(ctx context.Context, descriptor string) error {
	h, err := l.resolve(descriptor)
	if err != nil {
		return err
	}
	visible, err := h.Visible(ctx)
	if err != nil {
		return err
	}
	if !visible {
		return failf("", "Element '%s' should be visible but did not", descriptor)
	}
	logger.Info("Element '%s' is visible", descriptor)
	return nil
}

// ElementShouldContainText fails unless the element text contains expected.
func (l *Library) ElementShouldContainText(ctx context.Context, descriptor, expected, message string) error {
	actual, err := l.GetText(ctx, descriptor)
	if err != nil {
		return err
	}
	if !strings.Contains(actual, expected) {
		return failf(message, "Element '%s' should have contained text '%s' but its text was '%s'.", descriptor, expected, actual)
	}
	return nil
}

// ElementShouldNotContainText fails if the element text contains expected.
func (l *Library) ElementShouldNotContainText(ctx context.Context, descriptor, expected, message string) error {
	actual, err := l.GetText(ctx, descriptor)
	if err != nil {
		return err
	}
	if strings.Contains(actual, expected) {
		return failf(message, "Element '%s' should not contain text '%s' but it did.", descriptor, expected)
	}
	return nil
}

// ElementTextShouldBe fails unless the element label equals expected exactly.
func (l *Library) ElementTextShouldBe(ctx context.Context, descriptor, expected, message string) error {
	h, err := l.resolve(descriptor)
	if err != nil {
		return err
	}
	actual, err := h.Label(ctx)
	if err != nil {
		return err
	}
	if actual != expected {
		return failf(message, "The text of element '%s' should have been '%s' but in fact it was '%s'.", descriptor, expected, actual)
	}
	return nil
}

// ElementValueShouldBe fails unless the element value equals expected.
func (l *Library) ElementValueShouldBe(ctx context.Context, descriptor, expected string) error {
	h, err := l.resolve(descriptor)
	if err != nil {
		return err
	}
	actual, err := h.Value(ctx)
	if err != nil {
		return err
	}
	if actual != expected {
		return failf("", "Element '%s' value should be '%s' but it is '%s'.", descriptor, expected, actual)
	}
	return nil
}

// Presence probes

// textPresent reports whether any displayed element's label or value contains text.
func (l *Library) textPresent(text string) wait.Probe {
	h := l.registry.ResolveQuery(locator.Query{Using: "xpath", Value: locator.TextXPath(text, false)})
	return h.Displayed
}

// elementPresent reports whether any displayed element matches descriptor.
func (l *Library) elementPresent(descriptor string) (wait.Probe, error) {
	h, err := l.resolve(descriptor)
	if err != nil {
		return nil, err
	}
	return h.Displayed, nil
}

// PageShouldContainText fails unless text is displayed.
func (l *Library) PageShouldContainText(ctx context.Context, text string) error {
	ok, err := l.textPresent(text)(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return failf("", "Page should have contained text '%s' but did not", text)
	}
	return nil
}

// PageShouldNotContainText fails if text is displayed.
func (l *Library) PageShouldNotContainText(ctx context.Context, text string) error {
	ok, err := l.textPresent(text)(ctx)
	if err != nil {
		return err
	}
	if ok {
		return failf("", "Page should not have contained text '%s'", text)
	}
	return nil
}

// PageShouldContainElement fails unless an element matching descriptor is displayed.
func (l *Library) PageShouldContainElement(ctx context.Context, descriptor string) error {
	probe, err := l.elementPresent(descriptor)
	if err != nil {
		return err
	}
	ok, err := probe(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return failf("", "Page should have contained element '%s' but did not", descriptor)
	}
	return nil
}

// PageShouldNotContainElement fails if an element matching descriptor is displayed.
func (l *Library) PageShouldNotContainElement(ctx context.Context, descriptor string) error {
	probe, err := l.elementPresent(descriptor)
	if err != nil {
		return err
	}
	ok, err := probe(ctx)
	if err != nil {
		return err
	}
	if ok {
		return failf("", "Page should not have contained element '%s'", descriptor)
	}
	return nil
}
