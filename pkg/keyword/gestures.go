package keyword

import (
	"context"

	"github.com/devicelab-dev/wdakit/pkg/core"
)

// Narrow pinches in on the element identified by descriptor.
func (l *Library) Narrow(ctx context.Context, descriptor string) error {
	h, err := l.resolve(descriptor)
	if err != nil {
		return err
	}
	return l.gestures.Narrow(ctx, h)
}

// Enlarge spreads out on the element identified by descriptor.
func (l *Library) Enlarge(ctx context.Context, descriptor string) error {
	h, err := l.resolve(descriptor)
	if err != nil {
		return err
	}
	return l.gestures.Enlarge(ctx, h)
}

// NarrowByCoordinate pinches in with two fingers starting at p1 and p2.
func (l *Library) NarrowByCoordinate(ctx context.Context, p1, p2 core.Point) error {
	return l.gestures.NarrowByCoordinate(ctx, p1, p2)
}

// EnlargeByCoordinate spreads out with two fingers starting at p1 and p2.
func (l *Library) EnlargeByCoordinate(ctx context.Context, p1, p2 core.Point) error {
	return l.gestures.EnlargeByCoordinate(ctx, p1, p2)
}

// DragAndDropByElement drags from the center of one element to the center of another.
func (l *Library) DragAndDropByElement(ctx context.Context, src, dst string) error {
	from, err := l.resolve(src)
	if err != nil {
		return err
	}
	to, err := l.resolve(dst)
	if err != nil {
		return err
	}
	return l.gestures.DragAndDropElements(ctx, from, to)
}

// DragAndDropByCoordinate drags from one point to another.
func (l *Library) DragAndDropByCoordinate(ctx context.Context, from, to core.Point) error {
	return l.gestures.DragAndDrop(ctx, from, to)
}
