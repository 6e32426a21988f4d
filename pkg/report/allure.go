package report

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/logger"
)

// Allure result schema types.

// AllureResult represents a single test result in Allure format.
type AllureResult struct {
	UUID          string              `json:"uuid"`
	HistoryID     string              `json:"historyId"`
	FullName      string              `json:"fullName"`
	Name          string              `json:"name"`
	Status        string              `json:"status"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	Labels        []AllureLabel       `json:"labels"`
	StatusDetails AllureStatusDetails `json:"statusDetails"`
	Steps         []AllureStep        `json:"steps"`
}

// AllureStep represents a step within a test result.
type AllureStep struct {
	Name          string              `json:"name"`
	Status        string              `json:"status"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	StatusDetails AllureStatusDetails `json:"statusDetails"`
	Parameters    []AllureParameter   `json:"parameters"`
	Steps         []AllureStep        `json:"steps"`
}

// AllureParameter is one keyword argument shown on a step.
type AllureParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AllureLabel represents a label on a test result.
type AllureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AllureStatusDetails holds failure message and trace.
type AllureStatusDetails struct {
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

// AllureCategory defines a failure category with regex matching.
type AllureCategory struct {
	Name            string   `json:"name"`
	MatchedStatuses []string `json:"matchedStatuses"`
	MessageRegex    string   `json:"messageRegex,omitempty"`
	TraceRegex      string   `json:"traceRegex,omitempty"`
}

// AllureExecutor describes the tool that produced the results.
type AllureExecutor struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	BuildName  string `json:"buildName"`
	ReportName string `json:"reportName"`
}

// WriteAllure writes Allure-compatible result files into dir, one per suite.
func WriteAllure(dir string, result *core.RunResult, env Environment) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create allure-results dir: %w", err)
	}

	for _, s := range result.Suites {
		ar := buildAllureResult(s, result.RunID, env)
		path := filepath.Join(dir, ar.UUID+"-result.json")
		if err := atomicWriteJSON(path, ar); err != nil {
			return fmt.Errorf("write allure result for %s: %w", s.Name, err)
		}
	}

	if err := atomicWriteJSON(filepath.Join(dir, "categories.json"), allureCategories()); err != nil {
		return err
	}
	if err := writeAllureEnvironment(dir, env); err != nil {
		return err
	}
	executor := AllureExecutor{
		Name:       "wdakit",
		Type:       "wdakit",
		BuildName:  result.RunID,
		ReportName: "wdakit run " + result.RunID,
	}
	if err := atomicWriteJSON(filepath.Join(dir, "executor.json"), executor); err != nil {
		return err
	}

	logger.Info("allure results for %d suite(s) written to %s", len(result.Suites), dir)
	return nil
}

func buildAllureResult(s core.SuiteResult, runID string, env Environment) AllureResult {
	start := s.StartTime.UnixMilli()
	labels := []AllureLabel{
		{Name: "suite", Value: s.Name},
		{Name: "parentSuite", Value: filepath.Base(s.FilePath)},
		{Name: "framework", Value: "wdakit"},
		{Name: "language", Value: "go"},
		{Name: "severity", Value: "normal"},
		{Name: "tag", Value: "run:" + runID},
	}
	if env.WDAURL != "" {
		labels = append(labels, AllureLabel{Name: "host", Value: env.WDAURL})
	}

	details := AllureStatusDetails{Message: s.Error}
	steps := make([]AllureStep, 0, len(s.Steps))
	for _, step := range s.Steps {
		as := buildAllureStep(step)
		if details.Trace == "" && as.StatusDetails.Trace != "" {
			details.Trace = as.StatusDetails.Trace
		}
		steps = append(steps, as)
	}

	return AllureResult{
		UUID:          uuid.NewString(),
		HistoryID:     fnv32aHash(s.Name + ":" + s.FilePath),
		FullName:      s.FilePath + "#" + s.Name,
		Name:          s.Name,
		Status:        mapAllureStatus(s.Status),
		Stage:         "finished",
		Start:         start,
		Stop:          start + s.Duration.Milliseconds(),
		Labels:        labels,
		StatusDetails: details,
		Steps:         steps,
	}
}

func buildAllureStep(step core.StepResult) AllureStep {
	name := step.Keyword
	if step.Phase != "" {
		name = step.Phase + ": " + name
	}

	params := make([]AllureParameter, 0, len(step.Args)+1)
	for i, a := range step.Args {
		params = append(params, AllureParameter{Name: fmt.Sprintf("arg%d", i+1), Value: a})
	}
	if step.Assign != "" {
		params = append(params, AllureParameter{Name: "assign", Value: "${" + step.Assign + "} = " + fmt.Sprint(step.Output)})
	}

	var start int64
	if !step.StartTime.IsZero() {
		start = step.StartTime.UnixMilli()
	}

	details := AllureStatusDetails{Message: step.Error}
	if step.Status == core.StatusSkipped {
		details.Message = step.Message
	}
	if step.Category != core.ErrCategoryNone {
		details.Trace = "category: " + step.Category.String()
	}

	return AllureStep{
		Name:          name,
		Status:        mapAllureStatus(step.Status),
		Stage:         "finished",
		Start:         start,
		Stop:          start + step.Duration.Milliseconds(),
		StatusDetails: details,
		Parameters:    params,
		Steps:         []AllureStep{},
	}
}

// mapAllureStatus maps a step status to an Allure status. Errors that are
// not assertion or timeout failures are reported as "broken".
func mapAllureStatus(s core.StepStatus) string {
	switch s {
	case core.StatusPassed:
		return "passed"
	case core.StatusFailed:
		return "failed"
	case core.StatusErrored:
		return "broken"
	case core.StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// fnv32aHash returns a hex-encoded FNV-32a hash of the input string.
func fnv32aHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

func allureCategories() []AllureCategory {
	failed := []string{"failed"}
	broken := []string{"broken"}
	return []AllureCategory{
		{Name: "Element Not Found", MatchedStatuses: failed, MessageRegex: "(?i).*(element '.*' not found|text '.*' not found|no such element).*"},
		{Name: "Text Mismatch", MatchedStatuses: failed, MessageRegex: "(?i).*(should have contained|should not have contained|should have been).*"},
		{Name: "Not Visible", MatchedStatuses: failed, MessageRegex: "(?i).*should be visible.*"},
		{Name: "Wait Timeout", MatchedStatuses: failed, MessageRegex: "(?i).*(did not appear in|still present after|timed out|not met within).*"},
		{Name: "Gesture Rejected", MatchedStatuses: broken, TraceRegex: "category: gesture"},
		{Name: "Locator Error", MatchedStatuses: broken, TraceRegex: "category: locator"},
		{Name: "Connection Error", MatchedStatuses: broken, TraceRegex: "category: connection"},
		{Name: "Invalid Arguments", MatchedStatuses: broken, TraceRegex: "category: config"},
	}
}

// writeAllureEnvironment writes environment.properties with run metadata.
func writeAllureEnvironment(dir string, env Environment) error {
	var b strings.Builder
	b.WriteString("framework=wdakit\n")
	b.WriteString("platform=ios\n")
	if env.Version != "" {
		b.WriteString(fmt.Sprintf("runner.version=%s\n", env.Version))
	}
	if env.WDAURL != "" {
		b.WriteString(fmt.Sprintf("wda.url=%s\n", env.WDAURL))
	}
	if env.BundleID != "" {
		b.WriteString(fmt.Sprintf("app.id=%s\n", env.BundleID))
	}
	b.WriteString(fmt.Sprintf("generated=%s\n", time.Now().UTC().Format(time.RFC3339)))

	path := filepath.Join(dir, "environment.properties")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write environment.properties: %w", err)
	}
	return nil
}
