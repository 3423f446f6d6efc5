// Package scheduler runs the server's periodic housekeeping jobs.
package scheduler

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

var (
	ErrEmptyJobName  = errors.New("job name is required")
	ErrEmptyCronExpr = errors.New("cron expression is required")
	ErrBadInterval   = errors.New("job interval must be positive")
)

// Service wraps a gocron scheduler
type Service struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	stopOnce  sync.Once
	stopErr   error
}

// New creates a scheduler. Jobs do not run until Start is called.
func New(logger *slog.Logger) (*Service, error) {
	logger = logger.With(slog.String("component", "scheduler"))
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.Error("scheduler job panicked",
						slog.String("job_id", jobID.String()),
						slog.String("job_name", jobName),
						slog.Any("panic", recoverData))
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return &Service{scheduler: sched, logger: logger}, nil
}

// Start begins running scheduled jobs
func (s *Service) Start() {
	s.logger.Info("scheduler starting", slog.Int("jobs", len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop shuts down the scheduler; later calls return the first result
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		s.logger.Info("scheduler stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// Every registers a job that runs at a fixed interval
func (s *Service) Every(name string, interval time.Duration, task func()) (gocron.Job, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if interval <= 0 {
		return nil, ErrBadInterval
	}
	return s.add(name, gocron.DurationJob(interval), task, slog.Duration("interval", interval))
}

// AddJob registers a cron-based job
func (s *Service) AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}
	return s.add(name, gocron.CronJob(cronExpr, false), task, slog.String("cron", cronExpr))
}

func (s *Service) add(name string, def gocron.JobDefinition, task func(), schedule slog.Attr) (gocron.Job, error) {
	jobLogger := s.logger.With(slog.String("job_name", name), schedule)

	wrappedTask := func() {
		jobLogger.Debug("scheduler job started")
		task()
		jobLogger.Debug("scheduler job completed")
	}

	job, err := s.scheduler.NewJob(
		def,
		gocron.NewTask(wrappedTask),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		jobLogger.Error("failed to register scheduler job", slog.Any("error", err))
		return nil, err
	}
	jobLogger.Info("scheduler job registered")
	return job, nil
}
