package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/goliatone/go-sitepublish/internal/logging"
	"github.com/goliatone/go-sitepublish/internal/publish"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

const publishJobName = "sitepublish-publish"

var (
	ErrPublisherRequired = errors.New("scheduler: publisher is required")
	ErrIntervalRequired  = errors.New("scheduler: interval must be positive")
)

// Publisher runs one publish pass. *publish.Service satisfies it.
type Publisher interface {
	Publish(ctx context.Context) *publish.Result
}

// Scheduler republishes the site on a fixed interval. Runs never overlap; a tick that
// fires while a run is in progress is skipped.
type Scheduler struct {
	scheduler gocron.Scheduler
	publisher Publisher
	logger    interfaces.Logger
}

// New creates a stopped scheduler.
func New(publisher Publisher, logger interfaces.Logger) (*Scheduler, error) {
	if publisher == nil {
		return nil, ErrPublisherRequired
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: s,
		publisher: publisher,
		logger:    logging.OrNoOp(logger),
	}, nil
}

// SchedulePublish registers the periodic publish job and returns its id. When
// immediately is set the first run starts as soon as the scheduler starts.
func (s *Scheduler) SchedulePublish(ctx context.Context, interval time.Duration, immediately bool) (string, error) {
	if interval <= 0 {
		return "", ErrIntervalRequired
	}
	options := []gocron.JobOption{
		gocron.WithName(publishJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if immediately {
		options = append(options, gocron.WithStartAt(gocron.WithStartImmediately()))
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.run, ctx),
		options...,
	)
	if err != nil {
		return "", fmt.Errorf("create publish job: %w", err)
	}
	s.logger.Info("scheduler.publish.scheduled", "interval", interval.String(), "job_id", job.ID().String())
	return job.ID().String(), nil
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler.start")
	s.scheduler.Start()
}

// Stop waits for running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.logger.Info("scheduler.stop")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) run(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		s.logger.Debug("scheduler.publish.skipped", "error", err)
		return
	}
	result := s.publisher.Publish(ctx)
	if result == nil {
		return
	}
	fields := []any{
		"run_id", result.RunID,
		"outcome", string(result.Outcome()),
		"published", result.Published,
		"failed", result.Failed,
	}
	if result.Err != nil {
		s.logger.Warn("scheduler.publish.failed", append(fields, "error", result.Err)...)
		return
	}
	s.logger.Info("scheduler.publish.done", fields...)
}
