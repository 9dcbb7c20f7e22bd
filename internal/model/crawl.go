package model

import "time"

// Outcome is the terminal state of a URL taken from the frontier.
type Outcome int

const (
	// OutcomeStored means the document was fetched with status 20 and saved.
	OutcomeStored Outcome = iota

	// OutcomeRedirected means the server answered with a 3x redirect.
	OutcomeRedirected

	// OutcomeSkipped means the URL was filtered out, disallowed by
	// robots.txt, answered with a non-success status, or could not be stored.
	OutcomeSkipped

	// OutcomeFailed means the fetch failed at the transport or protocol level.
	OutcomeFailed
)

// String returns the lower-case name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeStored:
		return "stored"
	case OutcomeRedirected:
		return "redirected"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CrawlStats counts what happened during one crawl run.
type CrawlStats struct {
	// Visited is the number of distinct URLs processed. The page cap
	// applies to this counter.
	Visited int `json:"visited"`

	// Stored is the number of documents written to the page store.
	Stored int `json:"stored"`

	// Unchanged is the number of stored documents whose content matched
	// the copy already in the page store. They are included in Stored.
	Unchanged int `json:"unchanged"`

	// Redirected is the number of 3x responses followed.
	Redirected int `json:"redirected"`

	// Skipped is the number of URLs not stored for non-failure reasons.
	Skipped int `json:"skipped"`

	// Failed is the number of transport or protocol failures.
	Failed int `json:"failed"`

	// StorageErrors is the number of documents that could not be saved.
	StorageErrors int `json:"storage_errors"`

	// Remaining is the frontier size when the run ended.
	Remaining int `json:"remaining"`
}

// Record increments the counter matching the outcome.
func (s *CrawlStats) Record(o Outcome) {
	switch o {
	case OutcomeStored:
		s.Stored++
	case OutcomeRedirected:
		s.Redirected++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// CrawlRun is a persisted summary of one crawl run.
type CrawlRun struct {
	// ID is the run's UUID, also attached to every log line of the run.
	ID string `json:"id"`

	// Seeds are the URLs the frontier started from.
	Seeds []string `json:"seeds"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended.
	FinishedAt time.Time `json:"finished_at"`

	// Stats holds the run's counters.
	Stats CrawlStats `json:"stats"`

	// Cancelled reports whether the run was interrupted before the frontier
	// was exhausted or the page cap was reached.
	Cancelled bool `json:"cancelled"`
}

// Duration returns how long the run took.
func (r *CrawlRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
