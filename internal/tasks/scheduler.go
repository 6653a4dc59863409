package tasks

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"contentos/internal/utils/logger"
)

// Scheduler registers the periodic publish-due sweep.
type Scheduler struct {
	scheduler *asynq.Scheduler
	sweepSpec string
	logger    *logger.Logger
}

// NewScheduler creates a new task scheduler. sweepSpec is a standard cron
// expression and is validated before anything is registered.
func NewScheduler(redisAddr, username, password string, db int, sweepSpec string, log *logger.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(sweepSpec); err != nil {
		return nil, fmt.Errorf("invalid publish sweep spec %q: %w", sweepSpec, err)
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
		&asynq.SchedulerOpts{},
	)

	return &Scheduler{
		scheduler: scheduler,
		sweepSpec: sweepSpec,
		logger:    log,
	}, nil
}

// Start registers periodic tasks and runs the scheduler until shutdown.
func (s *Scheduler) Start() error {
	if err := s.registerTasks(); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	s.logger.Info("starting task scheduler")
	return s.scheduler.Run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.logger.Info("task scheduler stopped")
}

func (s *Scheduler) registerTasks() error {
	entryID, err := s.scheduler.Register(
		s.sweepSpec,
		asynq.NewTask(TypePublishSweep, nil),
		asynq.Queue(QueuePublish),
		asynq.MaxRetry(RetryLocal),
		asynq.Timeout(TimeoutShort),
	)
	if err != nil {
		return fmt.Errorf("failed to register publish sweep: %w", err)
	}

	s.logger.Info("registered publish sweep %s spec=%s entry=%s", TypePublishSweep, s.sweepSpec, entryID)
	return nil
}
