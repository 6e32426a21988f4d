package suite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ParseFile parses a single suite file.
func ParseFile(path string) (*Suite, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided suite file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

type rawSuite struct {
	Name      string            `yaml:"name"`
	Variables map[string]string `yaml:"variables"`
	Setup     []yaml.Node       `yaml:"setup"`
	Steps     []yaml.Node       `yaml:"steps"`
	Teardown  []yaml.Node       `yaml:"teardown"`
}

// Parse parses suite YAML content. A document that is a bare sequence is
// read as the step list of an unnamed suite.
func Parse(data []byte, sourcePath string) (*Suite, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: sourcePath, Message: fmt.Sprintf("invalid suite: %v", err)}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &ParseError{Path: sourcePath, Line: 1, Message: "empty suite file"}
	}

	var raw rawSuite
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		for _, n := range root.Content {
			raw.Steps = append(raw.Steps, *n)
		}
	case yaml.MappingNode:
		if err := root.Decode(&raw); err != nil {
			return nil, &ParseError{Path: sourcePath, Line: root.Line, Message: fmt.Sprintf("invalid suite: %v", err)}
		}
	default:
		return nil, &ParseError{Path: sourcePath, Line: root.Line, Message: "suite must be a mapping or a list of steps"}
	}

	s := &Suite{
		Name:       raw.Name,
		SourcePath: sourcePath,
		Variables:  raw.Variables,
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	}

	var err error
	if s.Setup, err = parseSteps(raw.Setup, sourcePath); err != nil {
		return nil, err
	}
	if s.Steps, err = parseSteps(raw.Steps, sourcePath); err != nil {
		return nil, err
	}
	if s.Teardown, err = parseSteps(raw.Teardown, sourcePath); err != nil {
		return nil, err
	}
	if len(s.Steps) == 0 {
		return nil, &ParseError{Path: sourcePath, Line: root.Line, Message: "suite has no steps"}
	}
	return s, nil
}

func parseSteps(nodes []yaml.Node, sourcePath string) ([]Step, error) {
	steps := make([]Step, 0, len(nodes))
	for i := range nodes {
		step, err := parseStep(&nodes[i], sourcePath)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// parseStep accepts three shapes:
//
//	- Close Application
//	- Click Element: name=ok              (or a list of arguments)
//	- keyword: Get Text
//	  args: [id=title]
//	  assign: TITLE
func parseStep(node *yaml.Node, sourcePath string) (Step, error) {
	fail := func(n *yaml.Node, format string, args ...interface{}) (Step, error) {
		return Step{}, &ParseError{Path: sourcePath, Line: n.Line, Message: fmt.Sprintf(format, args...)}
	}

	switch node.Kind {
	case yaml.ScalarNode:
		if strings.TrimSpace(node.Value) == "" {
			return fail(node, "empty step")
		}
		return Step{Keyword: strings.TrimSpace(node.Value), Line: node.Line}, nil
	case yaml.MappingNode:
	default:
		return fail(node, "step must be a mapping or keyword name")
	}

	if isExplicit(node) {
		return parseExplicitStep(node, sourcePath)
	}

	if len(node.Content) != 2 {
		return fail(node, "step must have exactly one keyword, got %d", len(node.Content)/2)
	}
	keyNode, valueNode := node.Content[0], node.Content[1]
	args, err := parseArgs(valueNode, sourcePath)
	if err != nil {
		return Step{}, err
	}
	return Step{Keyword: strings.TrimSpace(keyNode.Value), Args: args, Line: keyNode.Line}, nil
}

func isExplicit(node *yaml.Node) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "keyword" {
			return true
		}
	}
	return false
}

func parseExplicitStep(node *yaml.Node, sourcePath string) (Step, error) {
	step := Step{Line: node.Line}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "keyword":
			step.Keyword = strings.TrimSpace(value.Value)
		case "args":
			args, err := parseArgs(value, sourcePath)
			if err != nil {
				return Step{}, err
			}
			step.Args = args
		case "assign":
			step.Assign = strings.TrimSpace(value.Value)
		default:
			return Step{}, &ParseError{Path: sourcePath, Line: key.Line, Message: fmt.Sprintf("unknown step field: %s", key.Value)}
		}
	}
	if step.Keyword == "" {
		return Step{}, &ParseError{Path: sourcePath, Line: node.Line, Message: "step has an empty keyword"}
	}
	return step, nil
}

func parseArgs(node *yaml.Node, sourcePath string) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		args := make([]string, 0, len(node.Content))
		for _, n := range node.Content {
			if n.Kind != yaml.ScalarNode {
				return nil, &ParseError{Path: sourcePath, Line: n.Line, Message: "keyword arguments must be scalars"}
			}
			args = append(args, n.Value)
		}
		return args, nil
	}
	return nil, &ParseError{Path: sourcePath, Line: node.Line, Message: "keyword arguments must be a scalar or a list"}
}

// Validate checks every step names a known keyword.
func (s *Suite) Validate(known func(name string) bool) error {
	for _, step := range s.AllSteps() {
		if !known(step.Keyword) {
			return &ParseError{Path: s.SourcePath, Line: step.Line, Message: fmt.Sprintf("unknown keyword: %s", step.Keyword)}
		}
	}
	return nil
}
