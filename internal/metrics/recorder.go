package metrics

import "time"

// PageResult labels the outcome of a single page task.
type PageResult string

const (
	PagePublished PageResult = "published"
	PageFailed    PageResult = "failed"
)

// PublishOutcome labels the final status of a publish run.
type PublishOutcome string

const (
	OutcomeSuccess PublishOutcome = "success"
	OutcomePartial PublishOutcome = "partial"
	OutcomeFailed  PublishOutcome = "failed"
)

// Recorder receives publish run observations. Implementations must be safe for
// concurrent use; page results are recorded from task goroutines.
type Recorder interface {
	ObservePublishDuration(d time.Duration)
	IncPageResult(locale string, result PageResult)
	IncPublishOutcome(outcome PublishOutcome)
}

// NoopRecorder discards every observation.
type NoopRecorder struct{}

func (NoopRecorder) ObservePublishDuration(time.Duration) {}
func (NoopRecorder) IncPageResult(string, PageResult)     {}
func (NoopRecorder) IncPublishOutcome(PublishOutcome)     {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
