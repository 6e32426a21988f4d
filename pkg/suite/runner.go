package suite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/jsengine"
	"github.com/devicelab-dev/wdakit/pkg/logger"
)

// Step phases reported in core.StepResult.Phase.
const (
	PhaseSetup    = "setup"
	PhaseTeardown = "teardown"
)

// Caller runs a keyword by name. Implemented by *keyword.Table.
type Caller interface {
	Call(ctx context.Context, name string, args []string) (interface{}, error)
}

// RunnerConfig configures the suite runner.
type RunnerConfig struct {
	Variables map[string]string // Global variables, overridden by suite variables

	// Live progress callbacks
	OnSuiteStart   func(suiteIdx, totalSuites int, name, file string)
	OnStepComplete func(step core.StepResult)
	OnSuiteEnd     func(suite core.SuiteResult)
}

// Runner executes suites sequentially against one keyword caller.
type Runner struct {
	caller Caller
	config RunnerConfig
}

// NewRunner creates a new Runner.
func NewRunner(caller Caller, cfg RunnerConfig) *Runner {
	return &Runner{caller: caller, config: cfg}
}

// Run executes all suites and returns the aggregated result tagged with a
// fresh run id. Suites after a cancelled context are skipped.
func (r *Runner) Run(ctx context.Context, suites []*Suite) *core.RunResult {
	result := &core.RunResult{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
	logger.Info("run %s: %d suite(s)", result.RunID, len(suites))

	for i, s := range suites {
		if ctx.Err() != nil {
			result.Suites = append(result.Suites, core.SuiteResult{
				Name:     s.Name,
				FilePath: s.SourcePath,
				Status:   core.StatusSkipped,
				Error:    "run cancelled",
			})
			continue
		}
		if r.config.OnSuiteStart != nil {
			r.config.OnSuiteStart(i, len(suites), s.Name, s.SourcePath)
		}
		result.Suites = append(result.Suites, r.RunSuite(ctx, s, result.RunID))
	}

	result.Duration = time.Since(result.StartTime)
	result.ComputeSummary()
	return result
}

// RunSuite executes one suite. Steps run in order and the first failure
// skips the remaining main steps; teardown steps always run.
func (r *Runner) RunSuite(ctx context.Context, s *Suite, runID string) core.SuiteResult {
	sr := &suiteRun{
		runner: r,
		js:     jsengine.New(),
		log:    logger.WithFields(map[string]interface{}{"run": runID, "suite": s.Name}),
		result: core.SuiteResult{
			Name:      s.Name,
			FilePath:  s.SourcePath,
			StartTime: time.Now(),
		},
	}
	sr.js.SetVariables(r.config.Variables)
	sr.js.SetVariables(s.Variables)
	sr.js.SetVariable("RUN_ID", runID)
	sr.js.SetVariable("SUITE_NAME", s.Name)

	sr.log.Infof("suite started (%d steps)", len(s.AllSteps()))

	failed := sr.runPhase(ctx, PhaseSetup, s.Setup, false)
	sr.runPhase(ctx, "", s.Steps, failed)
	sr.runPhase(context.WithoutCancel(ctx), PhaseTeardown, s.Teardown, false)

	res := sr.result
	res.Duration = time.Since(res.StartTime)
	res.Status = res.AggregateStatus()
	res.ComputeSummary()
	sr.log.Infof("suite %s in %v", res.Status, res.Duration)

	if r.config.OnSuiteEnd != nil {
		r.config.OnSuiteEnd(res)
	}
	return res
}

type suiteRun struct {
	runner *Runner
	js     *jsengine.Engine
	log    *logrus.Entry
	result core.SuiteResult
	index  int
}

// runPhase runs steps, skipping all of them when skip is set and the rest
// after a failure. It reports whether any step failed.
func (sr *suiteRun) runPhase(ctx context.Context, phase string, steps []Step, skip bool) bool {
	failed := false
	for _, step := range steps {
		var res core.StepResult
		switch {
		case skip || failed:
			res = sr.skipped(phase, step, "previous step failed")
		case ctx.Err() != nil:
			res = sr.skipped(phase, step, "execution cancelled")
		default:
			res = sr.execute(ctx, phase, step)
			failed = !res.Status.IsSuccess()
		}
		sr.record(res)
	}
	return failed
}

func (sr *suiteRun) skipped(phase string, step Step, reason string) core.StepResult {
	return core.StepResult{
		Index:   sr.index,
		Phase:   phase,
		Keyword: step.Keyword,
		Args:    step.Args,
		Status:  core.StatusSkipped,
		Message: reason,
	}
}

func (sr *suiteRun) execute(ctx context.Context, phase string, step Step) core.StepResult {
	args := make([]string, len(step.Args))
	for i, a := range step.Args {
		args[i] = sr.js.ExpandVariables(a)
	}

	res := core.StepResult{
		Index:     sr.index,
		Phase:     phase,
		Keyword:   step.Keyword,
		Args:      args,
		StartTime: time.Now(),
	}

	out, err := sr.runner.caller.Call(ctx, step.Keyword, args)
	res.Duration = time.Since(res.StartTime)
	res.Status = core.StatusFor(err)
	res.Category = core.CategoryOf(err)

	if err != nil {
		res.Error = err.Error()
		var execErr *core.ExecutionError
		if errors.As(err, &execErr) {
			res.Message = execErr.Message
		}
		sr.log.Errorf("step %d %s: %v", sr.index, step.Describe(), err)
		if sr.result.Error == "" {
			sr.result.Error = fmt.Sprintf("%s: %v", step.Keyword, err)
		}
		return res
	}

	res.Output = out
	if step.Assign != "" {
		sr.js.SetVariable(step.Assign, out)
		res.Assign = step.Assign
	}
	sr.log.Infof("step %d %s passed in %v", sr.index, step.Describe(), res.Duration)
	return res
}

func (sr *suiteRun) record(res core.StepResult) {
	sr.result.Steps = append(sr.result.Steps, res)
	sr.index++
	if sr.runner.config.OnStepComplete != nil {
		sr.runner.config.OnStepComplete(res)
	}
}
