package keyword

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/driver/mock"
	"github.com/devicelab-dev/wdakit/pkg/gesture"
	"github.com/devicelab-dev/wdakit/pkg/locator"
)

func TestNormalize(t *testing.T) {
	for _, name := range []string{"Click Element", "click_element", "CLICKELEMENT", " click  element "} {
		if got := Normalize(name); got != "clickelement" {
			t.Errorf("Normalize(%q) = %q, want clickelement", name, got)
		}
	}
}

func TestTableLookup(t *testing.T) {
	lib, _, _ := newTestLibrary(t)
	table := lib.Keywords()

	k, ok := table.Lookup("wait_until_page_contains_element")
	if !ok {
		t.Fatal("Expected keyword to be found")
	}
	if k.Name != "Wait Until Page Contains Element" {
		t.Errorf("Name = %q", k.Name)
	}
	if _, ok := table.Lookup("Capture Page Screenshot"); ok {
		t.Error("Screenshot keywords are not provided")
	}

	list := table.List()
	if len(list) == 0 {
		t.Fatal("Expected keywords")
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name > list[i].Name {
			t.Errorf("List not sorted: %q before %q", list[i-1].Name, list[i].Name)
		}
	}
}

func TestEveryKeywordHasDoc(t *testing.T) {
	lib, _, _ := newTestLibrary(t)
	for _, k := range lib.Keywords().List() {
		if k.Doc == "" {
			t.Errorf("Keyword %q has no doc", k.Name)
		}
		if k.Run == nil {
			t.Errorf("Keyword %q has no implementation", k.Name)
		}
	}
}

func TestBind(t *testing.T) {
	k := Keyword{
		Name:   "Swipe",
		Params: []Param{req("start_x"), req("start_y"), req("end_x"), req("end_y"), opt("duration", "1000")},
	}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"positional", []string{"1", "2", "3", "4"}, []string{"1", "2", "3", "4", "1000"}},
		{"all positional", []string{"1", "2", "3", "4", "500"}, []string{"1", "2", "3", "4", "500"}},
		{"named", []string{"end_y=4", "start_x=1", "start_y=2", "end_x=3"}, []string{"1", "2", "3", "4", "1000"}},
		{"mixed", []string{"1", "2", "end_x=3", "end_y=4", "duration=10"}, []string{"1", "2", "3", "4", "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := k.Bind(tt.args)
			if err != nil {
				t.Fatalf("Bind failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Bind mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBindErrors(t *testing.T) {
	k := Keyword{Name: "Input Text", Params: []Param{loc("locator"), req("text")}}

	tests := []struct {
		name string
		args []string
	}{
		{"missing", []string{"id=user"}},
		{"too many", []string{"id=user", "a", "b"}},
		{"positional after named", []string{"id=user", "text=a", "extra"}},
		{"duplicate", []string{"id=user", "text=a", "text=b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := k.Bind(tt.args); !errors.Is(err, core.ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestBindLocatorSlotStaysPositional(t *testing.T) {
	k := Keyword{Name: "Input Text", Params: []Param{loc("locator"), req("text")}}

	got, err := k.Bind([]string{"text=Hello", "world"})
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if diff := cmp.Diff([]string{"text=Hello", "world"}, got); diff != "" {
		t.Errorf("Bind mismatch (-want +got):\n%s", diff)
	}
}

func TestUsage(t *testing.T) {
	k := Keyword{Name: "Click Text", Params: []Param{req("text"), opt("exact_match", "false")}}
	if got := k.Usage(); got != "Click Text text [exact_match=false]" {
		t.Errorf("Usage() = %q", got)
	}
}

func TestCallNarrowByCoordinate(t *testing.T) {
	lib, dev, _ := newTestLibrary(t)

	out, err := lib.Keywords().Call(context.Background(), "Narrow By Coordinate", []string{"100", "100", "200", "200"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if out != nil {
		t.Errorf("Expected no output, got %v", out)
	}
	want := gesture.NarrowScript(core.Point{X: 100, Y: 100}, core.Point{X: 200, Y: 200})
	if len(dev.Actions) != 1 {
		t.Fatalf("Expected 1 actions post, got %d", len(dev.Actions))
	}
	if diff := cmp.Diff(want, dev.Actions[0]); diff != "" {
		t.Errorf("Script mismatch (-want +got):\n%s", diff)
	}
}

func TestCallGetText(t *testing.T) {
	lib, dev, _ := newTestLibrary(t)
	e := mock.NewElement("t")
	e.Label = "Title"
	dev.Add(locator.Query{Using: "id", Value: "title"}, e)

	out, err := lib.Keywords().Call(context.Background(), "get text", []string{"id=title"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if out != "Title" {
		t.Errorf("Expected 'Title', got %v", out)
	}
}

func TestCallWaitTimeouts(t *testing.T) {
	lib, dev, clock := newTestLibrary(t)
	table := lib.Keywords()
	ctx := context.Background()

	if _, err := table.Call(ctx, "Wait Until Page Contains Element", []string{"id=x", "ten"}); !errors.Is(err, core.ErrMalformedTimeout) {
		t.Errorf("Expected ErrMalformedTimeout, got %v", err)
	}
	if len(dev.Calls) != 0 {
		t.Error("Malformed timeout should fail before probing")
	}

	if _, err := table.Call(ctx, "Wait Until Page Contains Element", []string{"id=x", "1s"}); !errors.Is(err, core.ErrWaitTimeout) {
		t.Errorf("Expected ErrWaitTimeout, got %v", err)
	}
	if clock.sleeps != 5 {
		t.Errorf("Expected 5 sleeps for 1s, got %d", clock.sleeps)
	}

	// Default timeout is 10s.
	clock.sleeps = 0
	if _, err := table.Call(ctx, "Wait Until Page Contains", []string{"Nothing"}); !errors.Is(err, core.ErrWaitTimeout) {
		t.Errorf("Expected ErrWaitTimeout, got %v", err)
	}
	if clock.sleeps != 50 {
		t.Errorf("Expected 50 sleeps for the 10s default, got %d", clock.sleeps)
	}
}

func TestCallClickAPoint(t *testing.T) {
	lib, dev, _ := newTestLibrary(t)
	table := lib.Keywords()
	ctx := context.Background()

	if _, err := table.Call(ctx, "Click A Point", []string{"10.7", "20"}); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	calls := dev.CallsTo("TouchAndHold")
	if len(calls) != 1 {
		t.Fatalf("Expected default 100ms hold, got %+v", dev.Calls)
	}
	if diff := cmp.Diff([]interface{}{10, 20, 100 * time.Millisecond}, calls[0].Args); diff != "" {
		t.Errorf("TouchAndHold args mismatch (-want +got):\n%s", diff)
	}

	if _, err := table.Call(ctx, "Click A Point", []string{"1", "2", "duration=0"}); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if n := len(dev.CallsTo("Tap")); n != 1 {
		t.Errorf("Expected a plain tap for duration 0, got %d", n)
	}

	if _, err := table.Call(ctx, "Click A Point", []string{"x", "2"}); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestCallClickTextExactMatch(t *testing.T) {
	lib, dev, _ := newTestLibrary(t)
	dev.Add(textQuery("OK", true), mock.NewElement("ok"))

	if _, err := lib.Keywords().Call(context.Background(), "Click Text", []string{"OK", "exact_match=True"}); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if _, err := lib.Keywords().Call(context.Background(), "Click Text", []string{"OK", "sometimes"}); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestCallUnknownKeyword(t *testing.T) {
	lib, _, _ := newTestLibrary(t)
	if _, err := lib.Keywords().Call(context.Background(), "Find Image", nil); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}
