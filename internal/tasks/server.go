package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"contentos/internal/metrics"
	"contentos/internal/utils/logger"
)

// queueWeights gives every queue a share of workers; publish gets the
// largest share because it is latency-sensitive user-visible work.
var queueWeights = map[string]int{
	QueuePublish:        3,
	QueueGenerate:       2,
	QueueURLScan:        2,
	QueueShorts:         2,
	QueueAuthorityImage: 1,
	QueuePlan:           1,
}

// Server handles task processing
type Server struct {
	server      *asynq.Server
	handler     *TaskHandler
	concurrency int
	logger      *logger.Logger
}

// NewServer creates a new task processing server
func NewServer(redisAddr, username, password string, db, concurrency int, handler *TaskHandler, log *logger.Logger) *Server {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues:      queueWeights,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				queue, _ := asynq.GetQueueName(ctx)
				isTerminal := errors.Is(err, asynq.SkipRetry)
				metrics.JobsFailed.WithLabelValues(queue, fmt.Sprintf("%t", isTerminal)).Inc()

				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				if isTerminal || retried >= maxRetry {
					log.Error(fmt.Sprintf("task %s archived after %d attempts", task.Type(), retried+1), err)
					return
				}
				log.Warn("task %s failed (attempt %d/%d): %v", task.Type(), retried+1, maxRetry+1, err)
			}),
		},
	)

	return &Server{
		server:      server,
		handler:     handler,
		concurrency: concurrency,
		logger:      log,
	}
}

// Start starts the task processing server
func (s *Server) Start(ctx context.Context) error {
	metrics.Register()

	mux := asynq.NewServeMux()
	mux.Use(processedMetric)

	mux.HandleFunc(TypePlan, s.handler.HandlePlanTask)
	mux.HandleFunc(TypeGenerate, s.handler.HandleGenerateTask)
	mux.HandleFunc(TypeURLScan, s.handler.HandleURLScanTask)
	mux.HandleFunc(TypeShorts, s.handler.HandleShortsTask)
	mux.HandleFunc(TypeAuthorityImage, s.handler.HandleAuthorityImageTask)
	mux.HandleFunc(TypePublish, s.handler.HandlePublishTask)
	mux.HandleFunc(TypePublishSweep, s.handler.HandlePublishSweepTask)

	s.logger.Info("starting task processing server concurrency %d queues %v", s.concurrency, queueWeights)

	if err := s.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start task server: %w", err)
	}

	return nil
}

// processedMetric counts successful completions per queue.
func processedMetric(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		err := next.ProcessTask(ctx, t)
		if err == nil {
			queue, _ := asynq.GetQueueName(ctx)
			metrics.JobsProcessed.WithLabelValues(queue).Inc()
		}
		return err
	})
}

// Stop stops the task processing server
func (s *Server) Stop() {
	s.server.Stop()
	s.logger.Info("task processing server stopped")
}

// Shutdown gracefully shuts down the task processing server
func (s *Server) Shutdown() {
	s.logger.Info("shutting down task processing server")
	s.server.Shutdown()
}
