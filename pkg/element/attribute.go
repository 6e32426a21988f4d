package element

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/devicelab-dev/wdakit/pkg/core"
)

// Attribute names accepted by AttributeMatches.
const (
	AttrValue      = "value"
	AttrEnabled    = "enabled"
	AttrVisible    = "visible"
	AttrAccessible = "accessible"
)

// AttributeMatches reports whether attr of the element behind h matches pattern.
//
// Boolean attributes (enabled, visible, accessible) compare against pattern
// parsed as a bool. The value attribute matches on equality, then as a glob
// ("*foobar", where * and ? also match "/"), then as a regular expression anchored at both ends ("f.*ar").
// Any other attribute name fails with core.ErrUnsupportedAttribute before the
// device is queried.
func AttributeMatches(ctx context.Context, h *Handle, attr, pattern string) (bool, error) {
	switch attr {
	case AttrValue:
		actual, err := h.Value(ctx)
		if err != nil {
			return false, err
		}
		return matchString(actual, pattern), nil
	case AttrEnabled:
		return matchBool(ctx, h.Enabled, pattern)
	case AttrVisible:
		return matchBool(ctx, h.Visible, pattern)
	case AttrAccessible:
		return matchBool(ctx, h.Accessible, pattern)
	}
	return false, core.ErrUnsupportedAttribute.WithMessagef(
		"attribute '%s' is not supported, use one of value, enabled, visible, accessible", attr)
}

func matchBool(ctx context.Context, get func(context.Context) (bool, error), pattern string) (bool, error) {
	want, err := strconv.ParseBool(strings.TrimSpace(pattern))
	if err != nil {
		return false, core.ErrInvalidArgument.WithMessagef("expected true or false, got %q", pattern)
	}
	actual, err := get(ctx)
	if err != nil {
		return false, err
	}
	return actual == want, nil
}

func matchString(actual, pattern string) bool {
	if actual == pattern {
		return true
	}
	if glob, err := regexp.Compile(globToRegexp(pattern)); err == nil && glob.MatchString(actual) {
		return true
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return false
	}
	return re.MatchString(actual)
}

// globToRegexp translates shell-style wildcards into an anchored expression.
// Unlike path.Match, * and ? match any character including a separator.
func globToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '*':
			b.WriteString("(?s:.*)")
		case '?':
			b.WriteString("(?s:.)")
		case '\\':
			if i+1 < len(pattern) {
				i++
				b.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
			} else {
				b.WriteString(`\\`)
			}
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end <= 0 {
				b.WriteString(`\[`)
				continue
			}
			class := pattern[i+1 : i+1+end]
			if class[0] == '!' {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i += end + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return b.String()
}
