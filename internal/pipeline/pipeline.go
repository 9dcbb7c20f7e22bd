package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/gemsearch/internal/model"
)

// Result accumulates what the steps of one execution produced.
type Result struct {
	// CrawlRun is the summary of the crawl step, if it ran.
	CrawlRun *model.CrawlRun

	// IndexEntries is the number of index entries the index step added.
	IndexEntries int

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string

	// Cancelled is set when the context ended before every step ran.
	Cancelled bool

	// Err is the last step error.
	Err error
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the accumulated
// result from previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the result to fill in.
	Do(ctx context.Context, result *Result) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. Cancellation always stops the pipeline.
//
// Design decision: The default is to stop on error. An index built after a
// crawl that failed half way is still consistent with the page store, so
// callers that prefer a partial refresh opt in here.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and returns what they
// produced. The returned Result is never nil.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps should handle their own cancellation. This allows
// a crawl step to persist its partial run before the pipeline stops.
func (p *Pipeline) Execute(ctx context.Context) (*Result, error) {
	result := &Result{}
	p.logger.Debug("pipeline starting", "step_count", p.StepCount(), "steps", p.StepNames())

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			result.Cancelled = true
			return result, err
		}

		p.logger.Info("executing step", "step", step.Name())

		err := step.Do(ctx, result)
		result.PerformedSteps = append(result.PerformedSteps, step.Name())
		if err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			result.Err = err

			if ctx.Err() != nil {
				result.Cancelled = true
				return result, err
			}
			if !p.continueOnError {
				return result, err
			}
			continue
		}

		p.logger.Debug("step completed", "step", step.Name())
	}

	return result, nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
