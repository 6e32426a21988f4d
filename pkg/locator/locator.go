// Package locator parses element locator descriptors such as "name=Login"
// or "xpath=//*[@label='OK']" and maps their prefix to a WDA find strategy.
package locator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/devicelab-dev/wdakit/pkg/core"
)

// Locator is a parsed element descriptor.
type Locator struct {
	Prefix   string // lower-cased strategy prefix; empty means "use the default strategy"
	Criteria string // query value, interior '=' preserved
}

// Parse splits a descriptor on its first '='.
//
// The prefix is lower-cased with surrounding whitespace and '=' removed; the
// criteria is the remainder, trimmed. A descriptor without '=' is malformed.
func Parse(descriptor string) (Locator, error) {
	idx := strings.Index(descriptor, "=")
	if idx < 0 {
		return Locator{}, core.ErrMalformedLocator.WithMessagef("locator %q: '=' not in locator", descriptor)
	}

	prefix := strings.ToLower(strings.Trim(strings.TrimSpace(descriptor[:idx]), "="))
	criteria := strings.TrimSpace(descriptor[idx+1:])

	return Locator{Prefix: prefix, Criteria: criteria}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(descriptor string) Locator {
	loc, err := Parse(descriptor)
	if err != nil {
		panic(err)
	}
	return loc
}

// HasPrefix reports whether the descriptor named a strategy explicitly.
func (l Locator) HasPrefix() bool {
	return l.Prefix != ""
}

// String reconstructs an equivalent descriptor. A locator without a prefix
// renders as "=criteria", since bare criteria would not parse.
func (l Locator) String() string {
	return l.Prefix + "=" + l.Criteria
}

// Strategy is the lookup method bound to a locator prefix.
type Strategy int

// Supported strategies. "text" is an alias of StrategyLabel and has no value of its own.
const (
	StrategyID Strategy = iota
	StrategyName
	StrategyXPath
	StrategyLabel
	StrategyValue
)

// Strategies lists every strategy in declaration order.
var Strategies = []Strategy{StrategyID, StrategyName, StrategyXPath, StrategyLabel, StrategyValue}

func (s Strategy) String() string {
	switch s {
	case StrategyID:
		return "id"
	case StrategyName:
		return "name"
	case StrategyXPath:
		return "xpath"
	case StrategyLabel:
		return "label"
	case StrategyValue:
		return "value"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a prefix to its strategy.
func ParseStrategy(prefix string) (Strategy, error) {
	switch strings.ToLower(prefix) {
	case "id":
		return StrategyID, nil
	case "name":
		return StrategyName, nil
	case "xpath":
		return StrategyXPath, nil
	case "label", "text":
		return StrategyLabel, nil
	case "value":
		return StrategyValue, nil
	}
	return 0, core.ErrUnsupportedLocatorPrefix.WithMessagef("element locator with prefix '%s' is not supported", prefix)
}

// Query is a WDA find request body: {"using": ..., "value": ...}.
type Query struct {
	Using string `json:"using"`
	Value string `json:"value"`
}

func (q Query) String() string {
	return q.Using + ": " + q.Value
}

// Query builds the WDA query this strategy issues for criteria.
func (s Strategy) Query(criteria string) Query {
	switch s {
	case StrategyID:
		return Query{Using: "id", Value: criteria}
	case StrategyName:
		return Query{Using: "name", Value: criteria}
	case StrategyXPath:
		return Query{Using: "xpath", Value: criteria}
	case StrategyLabel:
		return Query{Using: "predicate string", Value: "label == " + strconv.Quote(criteria)}
	case StrategyValue:
		return Query{Using: "predicate string", Value: "value == " + strconv.Quote(criteria)}
	default:
		panic(fmt.Sprintf("locator: unhandled strategy %d", int(s)))
	}
}

// TextXPath builds the xpath used for page text presence checks and Click Text.
func TextXPath(text string, exact bool) string {
	if exact {
		return fmt.Sprintf(`//*[@value="%s" or @label="%s"]`, text, text)
	}
	return fmt.Sprintf(`//*[contains(@label,"%s") or contains(@value, "%s")]`, text, text)
}
