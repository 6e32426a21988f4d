package keyword

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/gesture"
)

// Func runs a keyword with its bound arguments, one per declared parameter.
type Func func(ctx context.Context, args []string) (interface{}, error)

// Param is one keyword parameter. Optional parameters carry a default.
type Param struct {
	Name     string
	Default  string
	Optional bool
	Locator  bool // positional values are never read as named arguments
}

func (p Param) String() string {
	if p.Optional {
		return p.Name + "=" + p.Default
	}
	return p.Name
}

// Keyword is a named, callable library operation.
type Keyword struct {
	Name   string
	Params []Param
	Doc    string
	Run    Func
}

// Usage returns the keyword signature, e.g. "Swipe start_x start_y end_x end_y [duration=1000]".
func (k Keyword) Usage() string {
	parts := []string{k.Name}
	for _, p := range k.Params {
		if p.Optional {
			parts = append(parts, "["+p.String()+"]")
		} else {
			parts = append(parts, p.Name)
		}
	}
	return strings.Join(parts, " ")
}

// Bind maps call arguments onto the keyword's parameters.
//
// Arguments are positional unless written as "param=value" where param is
// one of the keyword's parameter names; positional arguments may not follow
// named ones. A leading argument in a locator slot is always positional, so
// "text=Hello" stays a locator. Missing optional parameters take their defaults.
func (k Keyword) Bind(args []string) ([]string, error) {
	bound := make([]string, len(k.Params))
	set := make([]bool, len(k.Params))
	named := false

	for i, arg := range args {
		if !named && i < len(k.Params) && k.Params[i].Locator {
			bound[i], set[i] = arg, true
			continue
		}
		if idx, value, ok := k.named(arg); ok {
			if set[idx] {
				return nil, core.ErrInvalidArgument.WithMessagef("%s: parameter '%s' given twice", k.Name, k.Params[idx].Name)
			}
			bound[idx], set[idx] = value, true
			named = true
			continue
		}
		if named {
			return nil, core.ErrInvalidArgument.WithMessagef("%s: positional argument %q after named arguments", k.Name, arg)
		}
		if i >= len(k.Params) {
			return nil, core.ErrInvalidArgument.WithMessagef("%s: expected at most %d arguments, got %d", k.Name, len(k.Params), len(args))
		}
		bound[i], set[i] = arg, true
	}

	for i, p := range k.Params {
		if set[i] {
			continue
		}
		if !p.Optional {
			return nil, core.ErrInvalidArgument.WithMessagef("%s: missing argument '%s' (usage: %s)", k.Name, p.Name, k.Usage())
		}
		bound[i] = p.Default
	}
	return bound, nil
}

func (k Keyword) named(arg string) (int, string, bool) {
	name, value, ok := strings.Cut(arg, "=")
	if !ok {
		return 0, "", false
	}
	for i, p := range k.Params {
		if p.Name == strings.TrimSpace(name) {
			return i, value, true
		}
	}
	return 0, "", false
}

// Normalize folds a keyword name for lookup: case, spaces and underscores
// are ignored, so "Click Element", "click_element" and "clickelement" match.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r == ' ' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Table is the keyword set of one Library, indexed by normalized name.
type Table struct {
	keywords []Keyword
	byName   map[string]Keyword
}

// Lookup finds a keyword by name.
func (t *Table) Lookup(name string) (Keyword, bool) {
	k, ok := t.byName[Normalize(name)]
	return k, ok
}

// List returns all keywords sorted by name.
func (t *Table) List() []Keyword {
	out := make([]Keyword, len(t.keywords))
	copy(out, t.keywords)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call binds args and runs the named keyword.
func (t *Table) Call(ctx context.Context, name string, args []string) (interface{}, error) {
	k, ok := t.Lookup(name)
	if !ok {
		return nil, core.ErrInvalidArgument.WithMessagef("no keyword with name '%s'", name)
	}
	bound, err := k.Bind(args)
	if err != nil {
		return nil, err
	}
	return k.Run(ctx, bound)
}

func req(name string) Param { return Param{Name: name} }

func loc(name string) Param { return Param{Name: name, Locator: true} }

func opt(name, def string) Param { return Param{Name: name, Default: def, Optional: true} }

func params(p ...Param) []Param { return p }

func none(err error) (interface{}, error) { return nil, err }

// Keywords returns the library's keyword table.
func (l *Library) Keywords() *Table {
	ks := []Keyword{
		// Application lifecycle
		{Name: "Open Application", Params: params(opt("bundle_id", "")), Doc: "Waits for WDA and opens a session for the application.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.OpenApplication(ctx, a[0])) }},
		{Name: "Close Application", Doc: "Closes the WDA session.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.CloseApplication(ctx)) }},
		{Name: "Launch Application", Doc: "Activates the application under test.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.LaunchApplication(ctx)) }},
		{Name: "Quit Application", Doc: "Terminates the application under test, keeping the session.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.QuitApplication(ctx)) }},
		{Name: "Switch Application", Params: params(req("bundle_id")), Doc: "Makes another application the application under test.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.SwitchApplication(ctx, a[0])) }},
		{Name: "Press Home Button", Doc: "Presses the home button.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.PressHomeButton(ctx)) }},

		// Element actions and reads
		{Name: "Get Text", Params: params(loc("locator")), Doc: "Returns the element label, or its value when the label is empty.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return l.GetText(ctx, a[0]) }},
		{Name: "Clear Text", Params: params(loc("locator")), Doc: "Clears a text field.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.ClearText(ctx, a[0])) }},
		{Name: "Input Text", Params: params(loc("locator"), req("text")), Doc: "Types text into a text field.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.InputText(ctx, a[0], a[1])) }},
		{Name: "Click A Point", Params: params(req("x"), req("y"), opt("duration", "100")), Doc: "Taps a point, holding for duration milliseconds.",
			Run: func(ctx context.Context, a []string) (interface{}, error) {
				p, err := gesture.ParsePoint(a[0], a[1])
				if err != nil {
					return nil, err
				}
				d, err := millis(a[2])
				if err != nil {
					return nil, err
				}
				return none(l.ClickAPoint(ctx, p, d))
			}},
		{Name: "Click Element", Params: params(loc("locator")), Doc: "Taps the first matching element.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.ClickElement(ctx, a[0])) }},
		{Name: "Click Text", Params: params(req("text"), opt("exact_match", "false")), Doc: "Taps the first element whose label or value contains text.",
			Run: func(ctx context.Context, a []string) (interface{}, error) {
				exact, err := boolArg("exact_match", a[1])
				if err != nil {
					return nil, err
				}
				return none(l.ClickText(ctx, a[0], exact))
			}},
		{Name: "Swipe", Params: params(req("start_x"), req("start_y"), req("end_x"), req("end_y"), opt("duration", "1000")), Doc: "Swipes between two points over duration milliseconds.",
			Run: func(ctx context.Context, a []string) (interface{}, error) {
				from, to, err := points(a)
				if err != nil {
					return nil, err
				}
				d, err := millis(a[4])
				if err != nil {
					return nil, err
				}
				return none(l.Swipe(ctx, from, to, d))
			}},
		{Name: "Hide Keyboard", Params: params(opt("key_name", DefaultHideKeyboardKey)), Doc: "Dismisses the keyboard by tapping the named key.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.HideKeyboard(ctx, a[0])) }},
		{Name: "Get Element Attribute", Params: params(loc("locator"), req("attribute")), Doc: "Returns the value or name attribute.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return l.GetElementAttribute(ctx, a[0], a[1]) }},
		{Name: "Get Element Location", Params: params(loc("locator")), Doc: "Returns the element frame as x, y, width and height.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return l.GetElementLocation(ctx, a[0]) }},
		{Name: "Get Window Width", Doc: "Returns the screen width.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return l.GetWindowWidth(ctx) }},
		{Name: "Get Window Height", Doc: "Returns the screen height.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return l.GetWindowHeight(ctx) }},

		// Verification
		{Name: "Element Attribute Should Match", Params: params(loc("locator"), req("attr_name"), req("match_pattern")), Doc: "Fails unless value, enabled, visible or accessible matches.",
			Run: func(ctx context.Context, a []string) (interface{}, error) {
				return none(l.ElementAttributeShouldMatch(ctx, a[0], a[1], a[2]))
			}},
		{Name: "Element Should Be Visible", Params: params(loc("locator")), Doc: "Fails unless the element is visible.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.ElementShouldBeVisible(ctx, a[0])) }},
		{Name: "Element Should Contain Text", Params: params(loc("locator"), req("expected"), opt("message", "")), Doc: "Fails unless the element text contains expected.",
			Run: func(ctx context.Context, a []string) (interface{}, error) {
				return none(l.ElementShouldContainText(ctx, a[0], a[1], a[2]))
			}},
		{Name: "Element Should Not Contain Text", Params: params(loc("locator"), req("expected"), opt("message", "")), Doc: "Fails if the element text contains expected.",
			Run: func(ctx context.Context, a []string) (interface{}, error) {
				return none(l.ElementShouldNotContainText(ctx, a[0], a[1], a[2]))
			}},
		{Name: "Element Text Should Be", Params: params(loc("locator"), req("expected"), opt("message", "")), Doc: "Fails unless the element label equals expected.",
			Run: func(ctx context.Context, a []string) (interface{}, error) {
				return none(l.ElementTextShouldBe(ctx, a[0], a[1], a[2]))
			}},
		{Name: "Element Value Should Be", Params: params(loc("locator"), req("expected")), Doc: "Fails unless the element value equals expected.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.ElementValueShouldBe(ctx, a[0], a[1])) }},
		{Name: "Page Should Contain Text", Params: params(req("text")), Doc: "Fails unless text is displayed.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.PageShouldContainText(ctx, a[0])) }},
		{Name: "Page Should Not Contain Text", Params: params(req("text")), Doc: "Fails if text is displayed.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.PageShouldNotContainText(ctx, a[0])) }},
		{Name: "Page Should Contain Element", Params: params(loc("locator")), Doc: "Fails unless a matching element is displayed.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.PageShouldContainElement(ctx, a[0])) }},
		{Name: "Page Should Not Contain Element", Params: params(loc("locator")), Doc: "Fails if a matching element is displayed.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.PageShouldNotContainElement(ctx, a[0])) }},

		// Waits
		{Name: "Wait Until Page Contains", Params: params(req("text"), opt("timeout", "")), Doc: "Waits until text is displayed.",
			Run: l.waitKeyword(l.WaitUntilPageContains)},
		{Name: "Wait Until Page Does Not Contain", Params: params(req("text"), opt("timeout", "")), Doc: "Waits until text is no longer displayed.",
			Run: l.waitKeyword(l.WaitUntilPageDoesNotContain)},
		{Name: "Wait Until Page Contains Element", Params: params(loc("locator"), opt("timeout", "")), Doc: "Waits until a matching element is displayed.",
			Run: l.waitKeyword(l.WaitUntilPageContainsElement)},
		{Name: "Wait Until Page Does Not Contain Element", Params: params(loc("locator"), opt("timeout", "")), Doc: "Waits until no matching element is displayed.",
			Run: l.waitKeyword(l.WaitUntilPageDoesNotContainElement)},

		// Gestures
		{Name: "Narrow", Params: params(loc("locator")), Doc: "Pinches in on an element.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.Narrow(ctx, a[0])) }},
		{Name: "Enlarge", Params: params(loc("locator")), Doc: "Spreads out on an element.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.Enlarge(ctx, a[0])) }},
		{Name: "Narrow By Coordinate", Params: params(req("x1"), req("y1"), req("x2"), req("y2")), Doc: "Pinches in with two fingers.",
			Run: func(ctx context.Context, a []string) (interface{}, error) {
				p1, p2, err := points(a)
				if err != nil {
					return nil, err
				}
				return none(l.NarrowByCoordinate(ctx, p1, p2))
			}},
		{Name: "Enlarge By Coordinate", Params: params(req("x1"), req("y1"), req("x2"), req("y2")), Doc: "Spreads out with two fingers.",
			Run: func(ctx context.Context, a []string) (interface{}, error) {
				p1, p2, err := points(a)
				if err != nil {
					return nil, err
				}
				return none(l.EnlargeByCoordinate(ctx, p1, p2))
			}},
		{Name: "Drag And Drop By Element", Params: params(loc("ele1"), loc("ele2")), Doc: "Drags between the centers of two elements.",
			Run: func(ctx context.Context, a []string) (interface{}, error) { return none(l.DragAndDropByElement(ctx, a[0], a[1])) }},
		{Name: "Drag And Drop By Coordinate", Params: params(req("start_x"), req("start_y"), req("stop_x"), req("stop_y")), Doc: "Drags between two points.",
			Run: func(ctx context.Context, a []string) (interface{}, error) {
				from, to, err := points(a)
				if err != nil {
					return nil, err
				}
				return none(l.DragAndDropByCoordinate(ctx, from, to))
			}},
	}

	t := &Table{keywords: ks, byName: make(map[string]Keyword, len(ks))}
	for _, k := range ks {
		t.byName[Normalize(k.Name)] = k
	}
	return t
}

func (l *Library) waitKeyword(fn func(context.Context, string, time.Duration) error) Func {
	return func(ctx context.Context, a []string) (interface{}, error) {
		timeout, err := l.ParseTimeout(a[1])
		if err != nil {
			return nil, err
		}
		return none(fn(ctx, a[0], timeout))
	}
}

// points parses the first four arguments as two points.
func points(a []string) (core.Point, core.Point, error) {
	p1, err := gesture.ParsePoint(a[0], a[1])
	if err != nil {
		return core.Point{}, core.Point{}, err
	}
	p2, err := gesture.ParsePoint(a[2], a[3])
	if err != nil {
		return core.Point{}, core.Point{}, err
	}
	return p1, p2, nil
}

func millis(s string) (time.Duration, error) {
	n, err := gesture.ParseCoordinate(s)
	if err != nil || n < 0 {
		return 0, core.ErrInvalidArgument.WithMessagef("invalid duration %q: expected milliseconds", s)
	}
	return time.Duration(n) * time.Millisecond, nil
}

func boolArg(name, s string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, core.ErrInvalidArgument.WithMessagef("%s: expected true or false, got %q", name, s)
	}
	return b, nil
}
