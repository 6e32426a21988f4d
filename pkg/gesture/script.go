// Package gesture composes multi-touch scripts and submits them to WebDriverAgent.
package gesture

import (
	"strconv"
	"strings"

	"github.com/devicelab-dev/wdakit/pkg/core"
)

// Scale factors applied to each finger's start coordinates.
const (
	narrowFinger1  = 1.25
	narrowFinger2  = 0.8
	enlargeFinger1 = 0.8
	enlargeFinger2 = 1.25
)

// Durations used by the scripts, in milliseconds.
const (
	pinchMoveMillis = 1000
	dragHoldMillis  = 5000
	dragSettleMilli = 2000
)

// PointerAction is one step of a W3C pointer track. pointerDown and
// pointerUp carry only their type.
type PointerAction struct {
	Type     string   `json:"type"`
	Duration *int     `json:"duration,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
}

// PointerParameters describes the input source of a track.
type PointerParameters struct {
	PointerType string `json:"pointerType"`
}

// PointerTrack is the ordered action list of one finger.
type PointerTrack struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Parameters PointerParameters `json:"parameters"`
	Actions    []PointerAction   `json:"actions"`
}

// Script is a W3C actions payload posted to /actions.
type Script struct {
	Actions []PointerTrack `json:"actions"`
}

// TouchAction is one step of a WDA touch chain.
type TouchAction struct {
	Action  string                 `json:"action"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// DragScript is a touch chain posted to /wda/touch/perform.
type DragScript struct {
	Actions []TouchAction `json:"actions"`
}

// ParseCoordinate parses a caller-supplied coordinate. Integers are taken as
// is; decimal input is truncated toward zero.
func ParseCoordinate(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, core.ErrInvalidArgument.WithMessagef("invalid coordinate %q", s)
	}
	return int(f), nil
}

// ParsePoint parses an x, y pair of coordinates.
func ParsePoint(x, y string) (core.Point, error) {
	px, err := ParseCoordinate(x)
	if err != nil {
		return core.Point{}, err
	}
	py, err := ParseCoordinate(y)
	if err != nil {
		return core.Point{}, err
	}
	return core.Point{X: px, Y: py}, nil
}

func move(x, y float64) PointerAction {
	d := pinchMoveMillis
	return PointerAction{Type: "pointerMove", Duration: &d, X: &x, Y: &y}
}

func finger(id string, start core.Point, factor float64) PointerTrack {
	x, y := float64(start.X), float64(start.Y)
	return PointerTrack{
		Type:       "pointer",
		ID:         id,
		Parameters: PointerParameters{PointerType: "touch"},
		Actions: []PointerAction{
			move(x, y),
			{Type: "pointerDown"},
			move(x*factor, y*factor),
			{Type: "pointerUp"},
		},
	}
}

// PinchTracks builds a two-finger script. Each finger moves to its start
// point, presses, moves to its start scaled by its factor and lifts.
func PinchTracks(p1, p2 core.Point, f1, f2 float64) Script {
	return Script{Actions: []PointerTrack{
		finger("finger1", p1, f1),
		finger("finger2", p2, f2),
	}}
}

// NarrowScript pinches the two fingers toward each other.
func NarrowScript(p1, p2 core.Point) Script {
	return PinchTracks(p1, p2, narrowFinger1, narrowFinger2)
}

// EnlargeScript spreads the two fingers apart.
func EnlargeScript(p1, p2 core.Point) Script {
	return PinchTracks(p1, p2, enlargeFinger1, enlargeFinger2)
}

// Drag builds a press, hold, move and release chain from one point to another.
func Drag(from, to core.Point) DragScript {
	return DragScript{Actions: []TouchAction{
		{Action: "press", Options: map[string]interface{}{"x": from.X, "y": from.Y}},
		{Action: "wait", Options: map[string]interface{}{"ms": dragHoldMillis}},
		{Action: "moveTo", Options: map[string]interface{}{"x": to.X, "y": to.Y}},
		{Action: "wait", Options: map[string]interface{}{"ms": dragSettleMilli}},
		{Action: "release"},
	}}
}
