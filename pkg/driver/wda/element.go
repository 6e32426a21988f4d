package wda

import (
	"context"
	"fmt"
	"strings"

	"github.com/devicelab-dev/wdakit/pkg/core"
)

// Element finding

// FindElements returns the ids of all elements matching the query.
// An empty result is not an error.
func (c *Client) FindElements(ctx context.Context, using, value string) ([]string, error) {
	resp, err := c.post(ctx, c.sessionPath("/elements"), map[string]interface{}{
		"using": using,
		"value": value,
	})
	if err != nil {
		return nil, err
	}

	var elements []string
	if val, ok := resp["value"].([]interface{}); ok {
		for _, elem := range val {
			if id := elementID(elem); id != "" {
				elements = append(elements, id)
			}
		}
	}
	return elements, nil
}

// elementID extracts the id from either the legacy {"ELEMENT": id} or the
// W3C {"element-6066-11e4-a52e-4f735466cecf": id} reference form.
func elementID(ref interface{}) string {
	m, ok := ref.(map[string]interface{})
	if !ok {
		return ""
	}
	if id, ok := m["ELEMENT"].(string); ok {
		return id
	}
	for k, v := range m {
		if str, ok := v.(string); ok && strings.HasPrefix(k, "element-") {
			return str
		}
	}
	return ""
}

// Element reads

// ElementAttribute returns a named attribute (label, value, visible, ...).
// A null attribute is returned as "".
func (c *Client) ElementAttribute(ctx context.Context, elementID, name string) (string, error) {
	resp, err := c.get(ctx, c.sessionPath(fmt.Sprintf("/element/%s/attribute/%s", elementID, name)))
	if err != nil {
		return "", err
	}
	switch v := resp["value"].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// ElementEnabled reports whether an element is enabled.
func (c *Client) ElementEnabled(ctx context.Context, elementID string) (bool, error) {
	return c.boolValue(ctx, c.sessionPath(fmt.Sprintf("/element/%s/enabled", elementID)))
}

// ElementDisplayed reports whether an element is displayed.
func (c *Client) ElementDisplayed(ctx context.Context, elementID string) (bool, error) {
	return c.boolValue(ctx, c.sessionPath(fmt.Sprintf("/element/%s/displayed", elementID)))
}

// ElementVisible reports the element's "visible" attribute.
func (c *Client) ElementVisible(ctx context.Context, elementID string) (bool, error) {
	v, err := c.ElementAttribute(ctx, elementID, "visible")
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// ElementAccessible reports whether an element is accessible.
func (c *Client) ElementAccessible(ctx context.Context, elementID string) (bool, error) {
	return c.boolValue(ctx, c.sessionPath(fmt.Sprintf("/wda/element/%s/accessible", elementID)))
}

// ElementRect returns an element's bounds.
func (c *Client) ElementRect(ctx context.Context, elementID string) (core.Bounds, error) {
	resp, err := c.get(ctx, c.sessionPath(fmt.Sprintf("/element/%s/rect", elementID)))
	if err != nil {
		return core.Bounds{}, err
	}
	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return core.Bounds{}, fmt.Errorf("invalid rect response for element %s", elementID)
	}
	var b core.Bounds
	b.X, _ = value["x"].(float64)
	b.Y, _ = value["y"].(float64)
	b.Width, _ = value["width"].(float64)
	b.Height, _ = value["height"].(float64)
	return b, nil
}

// Element actions

// ElementClick clicks an element.
func (c *Client) ElementClick(ctx context.Context, elementID string) error {
	_, err := c.post(ctx, c.sessionPath(fmt.Sprintf("/element/%s/click", elementID)), nil)
	return err
}

// ElementClear clears an element's text.
func (c *Client) ElementClear(ctx context.Context, elementID string) error {
	_, err := c.post(ctx, c.sessionPath(fmt.Sprintf("/element/%s/clear", elementID)), nil)
	return err
}

// ElementSendKeys types text into an element.
func (c *Client) ElementSendKeys(ctx context.Context, elementID, text string) error {
	_, err := c.post(ctx, c.sessionPath(fmt.Sprintf("/element/%s/value", elementID)), map[string]interface{}{
		"value": strings.Split(text, ""),
	})
	return err
}

// ElementPinch pinches (scale < 1) or spreads (scale > 1) on an element.
func (c *Client) ElementPinch(ctx context.Context, elementID string, scale, velocity float64) error {
	_, err := c.post(ctx, c.sessionPath(fmt.Sprintf("/wda/element/%s/pinch", elementID)), map[string]interface{}{
		"scale":    scale,
		"velocity": velocity,
	})
	return err
}

func (c *Client) boolValue(ctx context.Context, path string) (bool, error) {
	resp, err := c.get(ctx, path)
	if err != nil {
		return false, err
	}
	switch v := resp["value"].(type) {
	case bool:
		return v, nil
	case string:
		return truthy(v), nil
	case float64:
		return v != 0, nil
	}
	return false, nil
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
