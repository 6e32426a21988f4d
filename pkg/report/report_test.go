package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devicelab-dev/wdakit/pkg/core"
)

func testRun() *core.RunResult {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := &core.RunResult{
		RunID:     "run-123",
		StartTime: start,
		Duration:  4 * time.Second,
		Suites: []core.SuiteResult{
			{
				Name: "login", FilePath: "suites/login.yaml", Status: core.StatusPassed,
				StartTime: start, Duration: 2 * time.Second,
				Steps: []core.StepResult{
					{Phase: "setup", Keyword: "Open Application", Args: []string{"com.example.app"},
						Status: core.StatusPassed, StartTime: start, Duration: time.Second},
					{Keyword: "Get Text", Args: []string{"id=title"}, Assign: "TITLE", Output: "Welcome",
						Status: core.StatusPassed, StartTime: start.Add(time.Second), Duration: 500 * time.Millisecond},
				},
			},
			{
				Name: "zoom", FilePath: "suites/zoom.yaml", Status: core.StatusErrored,
				StartTime: start.Add(2 * time.Second), Duration: time.Second,
				Error: "Narrow By Coordinate: pinch failed",
				Steps: []core.StepResult{
					{Keyword: "Narrow By Coordinate", Args: []string{"80", "150", "300", "600"},
						Status: core.StatusErrored, Category: core.ErrCategoryGesture, Error: "pinch failed",
						StartTime: start.Add(2 * time.Second), Duration: 100 * time.Millisecond},
					{Keyword: "Press Home Button", Status: core.StatusSkipped, Message: "previous step failed"},
				},
			},
		},
	}
	r.ComputeSummary()
	return r
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "result.json")
	if err := WriteJSON(path, testRun()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got core.RunResult
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RunID != "run-123" || got.TotalSuites != 2 || got.PassedSuites != 1 {
		t.Errorf("unexpected result: %+v", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only result.json in dir, got %d entries", len(entries))
	}
}

func readAllureResults(t *testing.T, dir string) map[string]AllureResult {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "*-result.json"))
	if err != nil {
		t.Fatal(err)
	}
	results := make(map[string]AllureResult)
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		var r AllureResult
		if err := json.Unmarshal(data, &r); err != nil {
			t.Fatalf("unmarshal %s: %v", f, err)
		}
		if !strings.HasPrefix(filepath.Base(f), r.UUID) {
			t.Errorf("file %s does not match uuid %s", f, r.UUID)
		}
		results[r.Name] = r
	}
	return results
}

func TestWriteAllure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "allure-results")
	env := Environment{Version: "1.2.0", WDAURL: "http://127.0.0.1:8100", BundleID: "com.example.app"}

	if err := WriteAllure(dir, testRun(), env); err != nil {
		t.Fatalf("WriteAllure: %v", err)
	}

	results := readAllureResults(t, dir)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	login := results["login"]
	if login.Status != "passed" || login.Stage != "finished" {
		t.Errorf("login status = %s/%s", login.Status, login.Stage)
	}
	if login.Stop-login.Start != 2000 {
		t.Errorf("expected 2000ms duration, got %d", login.Stop-login.Start)
	}
	if len(login.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(login.Steps))
	}
	if login.Steps[0].Name != "setup: Open Application" {
		t.Errorf("step name = %q", login.Steps[0].Name)
	}
	assign := login.Steps[1].Parameters[len(login.Steps[1].Parameters)-1]
	if assign.Name != "assign" || assign.Value != "${TITLE} = Welcome" {
		t.Errorf("assign parameter = %+v", assign)
	}

	zoom := results["zoom"]
	if zoom.Status != "broken" {
		t.Errorf("errored suite should be broken, got %s", zoom.Status)
	}
	if zoom.StatusDetails.Message != "Narrow By Coordinate: pinch failed" || zoom.StatusDetails.Trace != "category: gesture" {
		t.Errorf("zoom details = %+v", zoom.StatusDetails)
	}
	if zoom.Steps[1].Status != "skipped" || zoom.Steps[1].StatusDetails.Message != "previous step failed" {
		t.Errorf("skipped step = %+v", zoom.Steps[1])
	}
	if zoom.HistoryID != fnv32aHash("zoom:suites/zoom.yaml") {
		t.Errorf("historyId = %s", zoom.HistoryID)
	}

	labels := make(map[string]string)
	for _, l := range zoom.Labels {
		labels[l.Name] = l.Value
	}
	if labels["parentSuite"] != "zoom.yaml" || labels["host"] != env.WDAURL || labels["tag"] != "run:run-123" {
		t.Errorf("labels = %v", labels)
	}
}

func TestWriteAllureSupportFiles(t *testing.T) {
	dir := t.TempDir()
	if err := WriteAllure(dir, testRun(), Environment{Version: "1.2.0", BundleID: "com.example.app"}); err != nil {
		t.Fatalf("WriteAllure: %v", err)
	}

	props, err := os.ReadFile(filepath.Join(dir, "environment.properties"))
	if err != nil {
		t.Fatalf("read environment.properties: %v", err)
	}
	for _, want := range []string{"framework=wdakit", "runner.version=1.2.0", "app.id=com.example.app"} {
		if !strings.Contains(string(props), want) {
			t.Errorf("environment.properties missing %q:\n%s", want, props)
		}
	}
	if strings.Contains(string(props), "wda.url=") {
		t.Error("empty WDA URL should be omitted")
	}

	var categories []AllureCategory
	data, err := os.ReadFile(filepath.Join(dir, "categories.json"))
	if err != nil {
		t.Fatalf("read categories.json: %v", err)
	}
	if err := json.Unmarshal(data, &categories); err != nil {
		t.Fatalf("unmarshal categories: %v", err)
	}
	if len(categories) == 0 {
		t.Error("expected categories")
	}

	var executor AllureExecutor
	data, err = os.ReadFile(filepath.Join(dir, "executor.json"))
	if err != nil {
		t.Fatalf("read executor.json: %v", err)
	}
	if err := json.Unmarshal(data, &executor); err != nil {
		t.Fatalf("unmarshal executor: %v", err)
	}
	if executor.BuildName != "run-123" {
		t.Errorf("executor buildName = %s", executor.BuildName)
	}
}

func TestMapAllureStatus(t *testing.T) {
	tests := map[core.StepStatus]string{
		core.StatusPassed:  "passed",
		core.StatusFailed:  "failed",
		core.StatusErrored: "broken",
		core.StatusSkipped: "skipped",
		core.StatusPending: "unknown",
	}
	for status, want := range tests {
		if got := mapAllureStatus(status); got != want {
			t.Errorf("mapAllureStatus(%v) = %s, want %s", status, got, want)
		}
	}
}
