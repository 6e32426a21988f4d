package gesture

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/devicelab-dev/wdakit/pkg/core"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func pinchTrack(id string, x, y, tx, ty float64) PointerTrack {
	return PointerTrack{
		Type:       "pointer",
		ID:         id,
		Parameters: PointerParameters{PointerType: "touch"},
		Actions: []PointerAction{
			{Type: "pointerMove", Duration: ip(1000), X: fp(x), Y: fp(y)},
			{Type: "pointerDown"},
			{Type: "pointerMove", Duration: ip(1000), X: fp(tx), Y: fp(ty)},
			{Type: "pointerUp"},
		},
	}
}

// The pinch factors are asymmetric on purpose: narrow scales finger1's
// coordinates by 1.25 and finger2's by 0.8 (enlarge the reverse), so targets
// depend on absolute screen position rather than the midpoint. Existing
// scripts rely on these exact targets, so the tests pin them.
func TestNarrowScript(t *testing.T) {
	got := NarrowScript(core.Point{X: 100, Y: 100}, core.Point{X: 200, Y: 200})
	want := Script{Actions: []PointerTrack{
		pinchTrack("finger1", 100, 100, 125, 125),
		pinchTrack("finger2", 200, 200, 160, 160),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NarrowScript mismatch (-want +got):\n%s", diff)
	}
}

// Enlarge applies 0.8x to finger1 and 1.25x to finger2.
func TestEnlargeScript(t *testing.T) {
	got := EnlargeScript(core.Point{X: 100, Y: 100}, core.Point{X: 200, Y: 200})
	want := Script{Actions: []PointerTrack{
		pinchTrack("finger1", 100, 100, 80, 80),
		pinchTrack("finger2", 200, 200, 250, 250),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EnlargeScript mismatch (-want +got):\n%s", diff)
	}
}

func TestPinchTargetsKeepFractions(t *testing.T) {
	got := NarrowScript(core.Point{X: 81, Y: 150}, core.Point{X: 300, Y: 600})
	f1 := got.Actions[0].Actions[2]
	f2 := got.Actions[1].Actions[2]
	if *f1.X != 101.25 || *f1.Y != 187.5 {
		t.Errorf("Expected finger1 target (101.25, 187.5), got (%v, %v)", *f1.X, *f1.Y)
	}
	if *f2.X != 240 || *f2.Y != 480 {
		t.Errorf("Expected finger2 target (240, 480), got (%v, %v)", *f2.X, *f2.Y)
	}
}

func TestScriptJSON(t *testing.T) {
	data, err := json.Marshal(NarrowScript(core.Point{X: 0, Y: 10}, core.Point{X: 20, Y: 30}))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded struct {
		Actions []struct {
			Type       string            `json:"type"`
			ID         string            `json:"id"`
			Parameters map[string]string `json:"parameters"`
			Actions    []map[string]interface{}
		} `json:"actions"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(decoded.Actions) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(decoded.Actions))
	}
	track := decoded.Actions[0]
	if track.Type != "pointer" || track.ID != "finger1" || track.Parameters["pointerType"] != "touch" {
		t.Errorf("Unexpected track header: %+v", track)
	}

	down := track.Actions[1]
	if diff := cmp.Diff(map[string]interface{}{"type": "pointerDown"}, down); diff != "" {
		t.Errorf("pointerDown should carry only its type (-want +got):\n%s", diff)
	}
	up := track.Actions[3]
	if diff := cmp.Diff(map[string]interface{}{"type": "pointerUp"}, up); diff != "" {
		t.Errorf("pointerUp should carry only its type (-want +got):\n%s", diff)
	}

	start := track.Actions[0]
	if _, ok := start["x"]; !ok {
		t.Error("Zero x coordinate must still be sent")
	}
}

func TestDrag(t *testing.T) {
	got := Drag(core.Point{X: 50, Y: 50}, core.Point{X: 225, Y: 225})
	want := DragScript{Actions: []TouchAction{
		{Action: "press", Options: map[string]interface{}{"x": 50, "y": 50}},
		{Action: "wait", Options: map[string]interface{}{"ms": 5000}},
		{Action: "moveTo", Options: map[string]interface{}{"x": 225, "y": 225}},
		{Action: "wait", Options: map[string]interface{}{"ms": 2000}},
		{Action: "release"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Drag mismatch (-want +got):\n%s", diff)
	}

	data, err := json.Marshal(got.Actions[4])
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"action":"release"}` {
		t.Errorf("Expected bare release, got %s", data)
	}
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"200", 200},
		{" 80 ", 80},
		{"150.9", 150},
		{"-3", -3},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := ParseCoordinate(tt.in)
		if err != nil {
			t.Errorf("ParseCoordinate(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCoordinate(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "abc", "1,2"} {
		if _, err := ParseCoordinate(bad); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("ParseCoordinate(%q) error = %v, want ErrInvalidArgument", bad, err)
		}
	}
}

func TestParsePoint(t *testing.T) {
	p, err := ParsePoint("10", "20.5")
	if err != nil {
		t.Fatalf("ParsePoint failed: %v", err)
	}
	if p != (core.Point{X: 10, Y: 20}) {
		t.Errorf("ParsePoint = %v", p)
	}
	if _, err := ParsePoint("10", "y"); err == nil {
		t.Error("Expected error for bad y")
	}
}
