package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/devicelab-dev/wdakit/pkg/core"
)

// Steps slower than this are marked in the live output.
const slowThreshold = 5 * time.Second

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// printer renders live progress and the final summary.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) suiteStart(idx, total int, name, file string) {
	fmt.Fprintf(p.w, "\n  %s %s (%s)\n", cyan(fmt.Sprintf("[%d/%d]", idx+1, total)), bold(name), file)
	fmt.Fprintln(p.w, strings.Repeat("─", 60))
}

func (p *printer) stepComplete(step core.StepResult) {
	desc := describeStep(step)
	dur := formatDuration(step.Duration)

	switch step.Status {
	case core.StatusPassed:
		if step.Duration >= slowThreshold {
			fmt.Fprintf(p.w, "    %s %s %s\n", yellow("⚠"), desc, yellow("("+dur+")"))
			return
		}
		fmt.Fprintf(p.w, "    %s %s (%s)\n", green("✓"), desc, dur)
	case core.StatusSkipped:
		fmt.Fprintf(p.w, "    %s %s\n", cyan("-"), gray(desc))
	default:
		fmt.Fprintf(p.w, "    %s %s (%s)\n", red("✗"), desc, dur)
		if step.Error != "" {
			fmt.Fprintf(p.w, "      %s %s\n", gray("╰─"), step.Error)
		}
	}
}

func (p *printer) suiteEnd(s core.SuiteResult) {
	if s.Status.IsSuccess() {
		fmt.Fprintf(p.w, "%s %s %s\n", green("✓"), s.Name, gray(formatDuration(s.Duration)))
		return
	}
	fmt.Fprintf(p.w, "%s %s %s\n", red("✗"), s.Name, gray(formatDuration(s.Duration)))
}

func (p *printer) summary(r *core.RunResult) {
	var total, passed, failed, skipped int
	for _, s := range r.Suites {
		total += s.TotalSteps
		passed += s.PassedSteps
		failed += s.FailedSteps
		skipped += s.SkippedSteps
	}

	fmt.Fprintln(p.w)
	if passed > 0 {
		fmt.Fprintf(p.w, "  %s (%s)\n", green(fmt.Sprintf("%d steps passing", passed)), formatDuration(r.Duration))
	}
	if failed > 0 {
		fmt.Fprintf(p.w, "  %s\n", red(fmt.Sprintf("%d steps failing", failed)))
	}
	if skipped > 0 {
		fmt.Fprintf(p.w, "  %s\n", cyan(fmt.Sprintf("%d steps skipped", skipped)))
	}
	fmt.Fprintln(p.w)

	const width = 84
	fmt.Fprintln(p.w, strings.Repeat("═", width))
	fmt.Fprintf(p.w, "  %-36s %-8s %6s %6s %6s %6s %10s\n", "Suite", "Status", "Steps", "Pass", "Fail", "Skip", "Duration")
	fmt.Fprintln(p.w, strings.Repeat("─", width))
	for _, s := range r.Suites {
		name := s.Name
		if len(name) > 36 {
			name = name[:33] + "..."
		}
		fmt.Fprintf(p.w, "  %-36s %s %6d %6d %6d %6d %10s\n",
			name, statusLabel(s.Status), s.TotalSteps, s.PassedSteps, s.FailedSteps, s.SkippedSteps,
			formatDuration(s.Duration))
	}
	fmt.Fprintln(p.w, strings.Repeat("─", width))
	fmt.Fprintf(p.w, "  %-36s %-8s %6d %6d %6d %6d %10s\n",
		"TOTAL", fmt.Sprintf("%d/%d", r.PassedSuites, r.TotalSuites), total, passed, failed, skipped,
		formatDuration(r.Duration))
	fmt.Fprintln(p.w, strings.Repeat("═", width))
}

func statusLabel(s core.StepStatus) string {
	switch s {
	case core.StatusPassed:
		return green(fmt.Sprintf("%-8s", "✓ PASS"))
	case core.StatusSkipped:
		return cyan(fmt.Sprintf("%-8s", "- SKIP"))
	case core.StatusErrored:
		return red(fmt.Sprintf("%-8s", "✗ ERROR"))
	default:
		return red(fmt.Sprintf("%-8s", "✗ FAIL"))
	}
}

func describeStep(step core.StepResult) string {
	var b strings.Builder
	if step.Phase != "" {
		b.WriteString("[" + step.Phase + "] ")
	}
	if step.Assign != "" {
		b.WriteString("${" + step.Assign + "} = ")
	}
	b.WriteString(step.Keyword)
	for _, a := range step.Args {
		b.WriteString("  ")
		b.WriteString(a)
	}
	return b.String()
}

// formatDuration shows milliseconds below one second, seconds below one
// minute and minutes plus seconds otherwise.
func formatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	return fmt.Sprintf("%dm %ds", ms/60000, (ms%60000)/1000)
}

// formatOutput renders a keyword result for the terminal.
func formatOutput(v interface{}) string {
	switch out := v.(type) {
	case string:
		return out
	case map[string]interface{}, map[string]float64, []interface{}:
		data, err := json.Marshal(out)
		if err == nil {
			return string(data)
		}
	}
	return fmt.Sprintf("%v", v)
}
