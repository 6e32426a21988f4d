package element

import (
	"context"
	"errors"
	"testing"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/driver/mock"
)

func TestAttributeMatches(t *testing.T) {
	e := mock.NewElement("e1")
	e.Value = "foobar"
	e.Enabled = true
	e.Visible = false
	e.Accessible = true
	h, _ := newLoginHandle(t, e)

	tests := []struct {
		attr    string
		pattern string
		want    bool
	}{
		{AttrValue, "foobar", true},
		{AttrValue, "*bar", true},
		{AttrValue, "f.*ar", true},
		{AttrValue, "oba", false},
		{AttrValue, "baz", false},
		{AttrEnabled, "True", true},
		{AttrEnabled, "false", false},
		{AttrVisible, "false", true},
		{AttrVisible, "true", false},
		{AttrAccessible, "true", true},
	}

	for _, tt := range tests {
		got, err := AttributeMatches(context.Background(), h, tt.attr, tt.pattern)
		if err != nil {
			t.Errorf("AttributeMatches(%s, %q) error: %v", tt.attr, tt.pattern, err)
			continue
		}
		if got != tt.want {
			t.Errorf("AttributeMatches(%s, %q) = %v, want %v", tt.attr, tt.pattern, got, tt.want)
		}
	}
}

func TestAttributeMatchesGlobCrossesSlash(t *testing.T) {
	e := mock.NewElement("e1")
	e.Value = "a/foobar"
	h, _ := newLoginHandle(t, e)

	tests := []struct {
		pattern string
		want    bool
	}{
		{"*foobar", true},
		{"?/foo*", true},
		{"[ab]/foobar", true},
		{"[!b]/foobar", true},
		{"a/foo?", false},
		{`a\/foobar`, true},
		{"*baz", false},
	}
	for _, tt := range tests {
		got, err := AttributeMatches(context.Background(), h, AttrValue, tt.pattern)
		if err != nil {
			t.Fatalf("AttributeMatches(%q) error: %v", tt.pattern, err)
		}
		if got != tt.want {
			t.Errorf("AttributeMatches(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestGlobToRegexp(t *testing.T) {
	tests := []struct {
		glob string
		want string
	}{
		{"*bar", "^(?s:.*)bar$"},
		{"a?c", "^a(?s:.)c$"},
		{"f.o", `^f\.o$`},
		{"[!x]y", "^[^x]y$"},
		{"[x", `^\[x$`},
	}
	for _, tt := range tests {
		if got := globToRegexp(tt.glob); got != tt.want {
			t.Errorf("globToRegexp(%q) = %q, want %q", tt.glob, got, tt.want)
		}
	}
}

func TestAttributeMatchesUnsupported(t *testing.T) {
	h, dev := newLoginHandle(t, mock.NewElement("e1"))

	for _, attr := range []string{"text", "name", "label", ""} {
		got, err := AttributeMatches(context.Background(), h, attr, "x")
		if !errors.Is(err, core.ErrUnsupportedAttribute) {
			t.Errorf("AttributeMatches(%q) error = %v, want ErrUnsupportedAttribute", attr, err)
		}
		if got {
			t.Errorf("AttributeMatches(%q) returned true alongside an error", attr)
		}
	}
	if len(dev.Calls) != 0 {
		t.Errorf("Unsupported attribute should not query the device, got %d calls", len(dev.Calls))
	}
}

func TestAttributeMatchesBadBoolPattern(t *testing.T) {
	h, _ := newLoginHandle(t, mock.NewElement("e1"))
	_, err := AttributeMatches(context.Background(), h, AttrEnabled, "maybe")
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestAttributeMatchesMissingElement(t *testing.T) {
	h, _ := newLoginHandle(t)
	_, err := AttributeMatches(context.Background(), h, AttrValue, "x")
	if !errors.Is(err, core.ErrElementNotFound) {
		t.Errorf("Expected ErrElementNotFound, got %v", err)
	}
}
