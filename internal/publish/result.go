package publish

import (
	"time"

	"github.com/goliatone/go-sitepublish/internal/metrics"
)

// PageOutcome is the result of one page task.
type PageOutcome struct {
	Key       string
	Title     string
	Locale    string
	Permalink string
	Output    string
	Err       error
}

// Result summarises a publish run. Err holds the run-level failure, if any; page failures
// stay on their PageOutcome.
type Result struct {
	RunID     string
	Locales   []string
	Published int
	Failed    int
	Pages     []PageOutcome
	Err       error
	Duration  time.Duration
}

// Outcome classifies the run for metrics and logs.
func (r *Result) Outcome() metrics.PublishOutcome {
	switch {
	case r == nil || r.Err != nil:
		return metrics.OutcomeFailed
	case r.Failed > 0:
		return metrics.OutcomePartial
	default:
		return metrics.OutcomeSuccess
	}
}

// Failures returns the outcomes of pages that were not published.
func (r *Result) Failures() []PageOutcome {
	if r == nil {
		return nil
	}
	var failed []PageOutcome
	for _, page := range r.Pages {
		if page.Err != nil {
			failed = append(failed, page)
		}
	}
	return failed
}
