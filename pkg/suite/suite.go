// Package suite parses and runs YAML keyword suites.
package suite

import "strings"

// Suite is a parsed keyword suite file.
type Suite struct {
	Name       string
	SourcePath string
	Variables  map[string]string
	Setup      []Step // Run first; a failure skips Steps
	Steps      []Step
	Teardown   []Step // Always run, even after a failure
}

// Step is one keyword call.
type Step struct {
	Keyword string
	Args    []string
	Assign  string // Variable receiving the keyword output
	Line    int
}

// Describe returns a human-readable description of the step.
func (s Step) Describe() string {
	var b strings.Builder
	if s.Assign != "" {
		b.WriteString("${" + s.Assign + "} = ")
	}
	b.WriteString(s.Keyword)
	for _, a := range s.Args {
		b.WriteString("  ")
		b.WriteString(a)
	}
	return b.String()
}

// AllSteps returns setup, main and teardown steps in execution order.
func (s *Suite) AllSteps() []Step {
	out := make([]Step, 0, len(s.Setup)+len(s.Steps)+len(s.Teardown))
	out = append(out, s.Setup...)
	out = append(out, s.Steps...)
	return append(out, s.Teardown...)
}
