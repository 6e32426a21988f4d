package gesture

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/driver/mock"
	"github.com/devicelab-dev/wdakit/pkg/driver/wda"
	"github.com/devicelab-dev/wdakit/pkg/element"
	"github.com/devicelab-dev/wdakit/pkg/locator"
)

func TestNarrowByCoordinate(t *testing.T) {
	dev := mock.New()
	c := NewComposer(dev)

	if err := c.NarrowByCoordinate(context.Background(), core.Point{X: 100, Y: 100}, core.Point{X: 200, Y: 200}); err != nil {
		t.Fatalf("NarrowByCoordinate failed: %v", err)
	}
	if len(dev.Actions) != 1 {
		t.Fatalf("Expected 1 actions post, got %d", len(dev.Actions))
	}
	want := NarrowScript(core.Point{X: 100, Y: 100}, core.Point{X: 200, Y: 200})
	if diff := cmp.Diff(want, dev.Actions[0]); diff != "" {
		t.Errorf("Posted script mismatch (-want +got):\n%s", diff)
	}
	if len(dev.Touches) != 0 {
		t.Error("Pinch must not use the touch endpoint")
	}
}

func TestActionsRejection(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		err     error
		wantErr bool
		wantMsg string
	}{
		{"null accepted", nil, nil, false, ""},
		{"message rejected", map[string]interface{}{"message": "out of bounds"}, nil, true, "out of bounds"},
		{"protocol error", nil, &wda.Error{Code: "invalid argument", Message: "bad pointer"}, true, "bad pointer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := mock.New()
			dev.ActionsValue = tt.value
			dev.ActionsErr = tt.err
			err := NewComposer(dev).EnlargeByCoordinate(context.Background(), core.Point{X: 1, Y: 1}, core.Point{X: 2, Y: 2})

			if !tt.wantErr {
				if err != nil {
					t.Errorf("Expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, core.ErrGestureRejected) {
				t.Fatalf("Expected ErrGestureRejected, got %v", err)
			}
			var execErr *core.ExecutionError
			if !errors.As(err, &execErr) || execErr.Message != tt.wantMsg {
				t.Errorf("Expected message %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestTransportErrorIsNotRejection(t *testing.T) {
	dev := mock.New()
	dev.ActionsErr = core.ErrServerUnreachable.WithCause(errors.New("refused"))
	err := NewComposer(dev).NarrowByCoordinate(context.Background(), core.Point{}, core.Point{})
	if errors.Is(err, core.ErrGestureRejected) {
		t.Error("Transport failure should not be reported as a rejected gesture")
	}
	if !errors.Is(err, core.ErrServerUnreachable) {
		t.Errorf("Expected ErrServerUnreachable, got %v", err)
	}
}

func TestDragAndDropRejection(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		wantErr bool
	}{
		{"true accepted", true, false},
		{"object accepted", map[string]interface{}{"ok": 1.0}, false},
		{"false rejected", false, true},
		{"null rejected", nil, true},
		{"empty string rejected", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := mock.New()
			dev.TouchValue = tt.value
			err := NewComposer(dev).DragAndDrop(context.Background(), core.Point{X: 200, Y: 200}, core.Point{X: 300, Y: 300})
			if tt.wantErr != (err != nil) {
				t.Fatalf("DragAndDrop error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, core.ErrGestureRejected) {
				t.Errorf("Expected ErrGestureRejected, got %v", err)
			}
		})
	}
}

func TestDragAndDropElements(t *testing.T) {
	dev := mock.New()
	src := mock.NewElement("src")
	src.Bounds = core.Bounds{X: 0, Y: 0, Width: 100, Height: 100}
	dst := mock.NewElement("dst")
	dst.Bounds = core.Bounds{X: 200, Y: 200, Width: 50, Height: 50}
	dev.Add(locator.Query{Using: "name", Value: "a"}, src)
	dev.Add(locator.Query{Using: "name", Value: "b"}, dst)

	reg := element.NewRegistry(dev)
	a, _ := reg.ResolveString("name=a")
	b, _ := reg.ResolveString("name=b")

	if err := NewComposer(dev).DragAndDropElements(context.Background(), a, b); err != nil {
		t.Fatalf("DragAndDropElements failed: %v", err)
	}
	if len(dev.Touches) != 1 {
		t.Fatalf("Expected 1 touch post, got %d", len(dev.Touches))
	}
	want := Drag(core.Point{X: 50, Y: 50}, core.Point{X: 225, Y: 225})
	if diff := cmp.Diff(want, dev.Touches[0]); diff != "" {
		t.Errorf("Posted drag mismatch (-want +got):\n%s", diff)
	}
}

func TestDragAndDropElementsMissingSource(t *testing.T) {
	dev := mock.New()
	reg := element.NewRegistry(dev)
	a, _ := reg.ResolveString("name=a")
	b, _ := reg.ResolveString("name=b")

	err := NewComposer(dev).DragAndDropElements(context.Background(), a, b)
	if !errors.Is(err, core.ErrElementNotFound) {
		t.Errorf("Expected ErrElementNotFound, got %v", err)
	}
	if len(dev.Touches) != 0 {
		t.Error("No gesture should be posted when an element is missing")
	}
}

func TestNarrowAndEnlargeElement(t *testing.T) {
	dev := mock.New()
	dev.Add(locator.Query{Using: "id", Value: "map"}, mock.NewElement("m1"))
	h, _ := element.NewRegistry(dev).ResolveString("id=map")
	c := NewComposer(dev)

	if err := c.Narrow(context.Background(), h); err != nil {
		t.Fatalf("Narrow failed: %v", err)
	}
	if err := c.Enlarge(context.Background(), h); err != nil {
		t.Fatalf("Enlarge failed: %v", err)
	}

	calls := dev.CallsTo("ElementPinch")
	if len(calls) != 2 {
		t.Fatalf("Expected 2 pinch calls, got %d", len(calls))
	}
	want := [][]interface{}{
		{"m1", 0.5, -1.0},
		{"m1", 2.0, 1.0},
	}
	for i, c := range calls {
		if diff := cmp.Diff(want[i], c.Args); diff != "" {
			t.Errorf("pinch call %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}
