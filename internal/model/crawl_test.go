package model

import (
	"testing"
	"time"
)

// TestOutcomeString tests the Outcome String method.
func TestOutcomeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeStored, "stored"},
		{OutcomeRedirected, "redirected"},
		{OutcomeSkipped, "skipped"},
		{OutcomeFailed, "failed"},
		{Outcome(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := tt.outcome.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestCrawlStatsRecord tests that Record increments the right counter.
func TestCrawlStatsRecord(t *testing.T) {
	t.Parallel()

	var stats CrawlStats
	stats.Record(OutcomeStored)
	stats.Record(OutcomeStored)
	stats.Record(OutcomeRedirected)
	stats.Record(OutcomeSkipped)
	stats.Record(OutcomeFailed)
	stats.Record(OutcomeFailed)
	stats.Record(OutcomeFailed)

	if stats.Stored != 2 {
		t.Errorf("expected 2 stored, got %d", stats.Stored)
	}
	if stats.Redirected != 1 {
		t.Errorf("expected 1 redirected, got %d", stats.Redirected)
	}
	if stats.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", stats.Skipped)
	}
	if stats.Failed != 3 {
		t.Errorf("expected 3 failed, got %d", stats.Failed)
	}
	if stats.Visited != 0 {
		t.Errorf("Record must not touch Visited, got %d", stats.Visited)
	}
}

// TestCrawlRunDuration tests the Duration helper.
func TestCrawlRunDuration(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	run := CrawlRun{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}

	if run.Duration() != 90*time.Second {
		t.Errorf("expected 90s, got %v", run.Duration())
	}
}
