package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, result *Result) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, result *Result) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, result)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})

	t.Run("sets custom logger", func(t *testing.T) {
		t.Parallel()

		logger := slog.New(slog.DiscardHandler)
		p := New(WithLogger(logger))

		if p.logger != logger {
			t.Error("expected custom logger to be set")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "test-step"})

		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "first"}, &mockStep{name: "second"})
		p.AddStep(&mockStep{name: "third"})

		names := p.StepNames()

		expected := []string{"first", "second", "third"}
		if len(names) != len(expected) {
			t.Fatalf("got %v", names)
		}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})

	t.Run("returns empty slice for empty pipeline", func(t *testing.T) {
		t.Parallel()

		if names := New().StepNames(); len(names) != 0 {
			t.Errorf("expected no names, got %v", names)
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		p := New(WithLogger(slog.New(slog.DiscardHandler)))
		p.AddSteps(&mockStep{name: "step-1"}, &mockStep{name: "step-2"})

		result, err := p.Execute(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.PerformedSteps) != 2 || result.PerformedSteps[0] != "step-1" || result.PerformedSteps[1] != "step-2" {
			t.Errorf("wrong execution order: %v", result.PerformedSteps)
		}
	})

	t.Run("steps share the result", func(t *testing.T) {
		t.Parallel()

		p := New(WithLogger(slog.New(slog.DiscardHandler)))
		p.AddSteps(
			&mockStep{name: "write", doFunc: func(_ context.Context, r *Result) error {
				r.IndexEntries = 7
				return nil
			}},
			&mockStep{name: "read", doFunc: func(_ context.Context, r *Result) error {
				if r.IndexEntries != 7 {
					return errors.New("missing value from previous step")
				}
				return nil
			}},
		)

		if _, err := p.Execute(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		second := &mockStep{name: "should-not-run"}

		p := New(WithLogger(slog.New(slog.DiscardHandler)))
		p.AddSteps(
			&mockStep{name: "failing-step", doFunc: func(context.Context, *Result) error { return expectedErr }},
			second,
		)

		result, err := p.Execute(context.Background())
		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if !errors.Is(result.Err, expectedErr) {
			t.Errorf("expected result.Err %v, got %v", expectedErr, result.Err)
		}
		if second.callCount != 0 {
			t.Error("second step should not have been called")
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		second := &mockStep{name: "should-run"}

		p := New(WithContinueOnError(true), WithLogger(slog.New(slog.DiscardHandler)))
		p.AddSteps(
			&mockStep{name: "failing-step", doFunc: func(context.Context, *Result) error { return errors.New("boom") }},
			second,
		)

		result, err := p.Execute(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if second.callCount != 1 {
			t.Error("second step should have been called")
		}
		if result.Err == nil {
			t.Error("expected step error to be recorded")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New(WithLogger(slog.New(slog.DiscardHandler)))
		p.AddStep(step)

		result, err := p.Execute(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if !result.Cancelled {
			t.Error("expected result to be marked cancelled")
		}
		if step.callCount != 0 {
			t.Error("step should not run after cancellation")
		}
	})

	t.Run("cancellation inside a step stops even with continue on error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		second := &mockStep{name: "second"}

		p := New(WithContinueOnError(true), WithLogger(slog.New(slog.DiscardHandler)))
		p.AddSteps(
			&mockStep{name: "first", doFunc: func(ctx context.Context, _ *Result) error {
				cancel()
				return ctx.Err()
			}},
			second,
		)

		result, err := p.Execute(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if !result.Cancelled || second.callCount != 0 {
			t.Errorf("expected pipeline to stop, result=%+v", result)
		}
		if len(result.PerformedSteps) != 1 {
			t.Errorf("performed = %v", result.PerformedSteps)
		}
	})
}
