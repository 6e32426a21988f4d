package gesture

import (
	"context"
	"errors"
	"fmt"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/driver/wda"
	"github.com/devicelab-dev/wdakit/pkg/logger"
)

// Performer submits raw gesture payloads and returns the response "value".
// Implemented by *wda.Client.
type Performer interface {
	TouchPerform(ctx context.Context, body interface{}) (interface{}, error)
	PerformActions(ctx context.Context, body interface{}) (interface{}, error)
}

// Target is an element a gesture can be aimed at.
type Target interface {
	Bounds(ctx context.Context) (core.Bounds, error)
	Pinch(ctx context.Context, scale, velocity float64) error
}

// Pinch parameters for the element-level gestures.
const (
	NarrowScale     = 0.5
	NarrowVelocity  = -1.0
	EnlargeScale    = 2.0
	EnlargeVelocity = 1.0
)

// Composer builds gesture scripts and submits them through a Performer.
type Composer struct {
	performer Performer
}

// NewComposer creates a composer that submits to p.
func NewComposer(p Performer) *Composer {
	return &Composer{performer: p}
}

// NarrowByCoordinate pinches in with fingers starting at p1 and p2.
func (c *Composer) NarrowByCoordinate(ctx context.Context, p1, p2 core.Point) error {
	logger.Debug("narrow by coordinate %s %s", p1, p2)
	return c.actions(ctx, NarrowScript(p1, p2))
}

// EnlargeByCoordinate spreads out with fingers starting at p1 and p2.
func (c *Composer) EnlargeByCoordinate(ctx context.Context, p1, p2 core.Point) error {
	logger.Debug("enlarge by coordinate %s %s", p1, p2)
	return c.actions(ctx, EnlargeScript(p1, p2))
}

// DragAndDrop drags from one point to another.
func (c *Composer) DragAndDrop(ctx context.Context, from, to core.Point) error {
	logger.Debug("drag %s -> %s", from, to)
	return c.touch(ctx, Drag(from, to))
}

// DragAndDropElements drags from the center of src to the center of dst.
// Both bounds are read from the device at call time.
func (c *Composer) DragAndDropElements(ctx context.Context, src, dst Target) error {
	from, err := src.Bounds(ctx)
	if err != nil {
		return err
	}
	to, err := dst.Bounds(ctx)
	if err != nil {
		return err
	}
	return c.DragAndDrop(ctx, from.Center(), to.Center())
}

// Narrow pinches in on an element.
func (c *Composer) Narrow(ctx context.Context, t Target) error {
	return c.pinch(ctx, t, NarrowScale, NarrowVelocity)
}

// Enlarge spreads out on an element.
func (c *Composer) Enlarge(ctx context.Context, t Target) error {
	return c.pinch(ctx, t, EnlargeScale, EnlargeVelocity)
}

func (c *Composer) pinch(ctx context.Context, t Target, scale, velocity float64) error {
	if err := t.Pinch(ctx, scale, velocity); err != nil {
		return rejected(err)
	}
	return nil
}

// actions posts a W3C script. Any non-null value means the server refused it.
func (c *Composer) actions(ctx context.Context, s Script) error {
	value, err := c.performer.PerformActions(ctx, s)
	if err != nil {
		return rejected(err)
	}
	if value != nil {
		return core.ErrGestureRejected.WithMessage(message(value))
	}
	return nil
}

// touch posts a touch chain. A falsy value means the server refused it.
func (c *Composer) touch(ctx context.Context, s DragScript) error {
	value, err := c.performer.TouchPerform(ctx, s)
	if err != nil {
		return rejected(err)
	}
	if !truthy(value) {
		return core.ErrGestureRejected.WithMessage(message(value))
	}
	return nil
}

// rejected turns a WDA protocol error into ErrGestureRejected. Transport
// and lookup failures pass through unchanged.
func rejected(err error) error {
	var wdaErr *wda.Error
	if errors.As(err, &wdaErr) {
		return core.ErrGestureRejected.WithMessage(wdaErr.Message).WithCause(err)
	}
	return err
}

func message(value interface{}) string {
	if m, ok := value.(map[string]interface{}); ok {
		if msg, ok := m["message"].(string); ok {
			return msg
		}
	}
	if value == nil {
		return "gesture rejected"
	}
	return fmt.Sprintf("gesture rejected: %v", value)
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case map[string]interface{}:
		return len(t) > 0
	case []interface{}:
		return len(t) > 0
	}
	return true
}
