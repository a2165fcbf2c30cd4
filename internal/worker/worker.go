// Package worker consumes jobs from the queue and executes them with a
// bounded, per-task retry policy. Each job attempt moves through
// submitted -> running -> {succeeded | retry-scheduled | failed-terminal}.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"contentbe/internal/queue"
	"contentbe/internal/storage"
	"contentbe/shared/postgresql"
	"contentbe/shared/rabbitmq"
)

// ErrInvalidPayload is returned when a job payload is missing fields or
// malformed.
var ErrInvalidPayload = errors.New("invalid job payload")

// TaskFunc executes one job attempt.
type TaskFunc func(ctx context.Context, payload json.RawMessage) error

// Task binds a job body to its retry base delay. The retry-or-not decision
// is made per task from inside the failure handler, not globally by the
// dispatcher.
type Task struct {
	Run       TaskFunc
	BaseDelay time.Duration
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	DBClient      *postgresql.Client
	RabbitClient  *rabbitmq.Client
	Concurrency   int
	PrefetchCount int
	JobTimeout    time.Duration
	Retry         RetryPolicy
}

// Worker represents the background job worker
type Worker struct {
	logger        *slog.Logger
	dbClient      *postgresql.Client
	rabbitClient  *rabbitmq.Client
	store         *storage.Storage
	tasks         map[queue.JobName]Task
	concurrency   int
	prefetchCount int
	jobTimeout    time.Duration
	retry         RetryPolicy
	jobsChan      chan *jobMessage
	wg            sync.WaitGroup
	retryWG       sync.WaitGroup
	stopChan      chan struct{}
	workerID      string
}

// jobMessage is one delivered job attempt.
type jobMessage struct {
	name     queue.JobName
	payload  json.RawMessage
	body     []byte // original envelope, republished verbatim on retry
	id       string
	attempt  int
	delivery amqp.Delivery
}

// NewWorker creates a new worker instance with its task registry.
func NewWorker(cfg *Config) *Worker {
	w := &Worker{
		logger:        cfg.Logger,
		dbClient:      cfg.DBClient,
		rabbitClient:  cfg.RabbitClient,
		store:         storage.NewStorage(),
		concurrency:   cfg.Concurrency,
		prefetchCount: cfg.PrefetchCount,
		jobTimeout:    cfg.JobTimeout,
		retry:         cfg.Retry,
		jobsChan:      make(chan *jobMessage),
		stopChan:      make(chan struct{}),
		workerID:      fmt.Sprintf("worker-%s", uuid.NewString()[:8]),
	}

	w.tasks = map[queue.JobName]Task{
		queue.JobProcessArticle: {Run: w.processArticle, BaseDelay: processArticleRetryBase},
	}

	return w
}

// Start begins consuming and processing jobs. It blocks until the context
// is canceled or the delivery channel closes.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
		slog.Int("max_tries", w.retry.MaxTries),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)
	w.dispatch(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker, waiting for in-flight jobs and pending
// retry republishes.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.retryWG.Wait()
	w.logger.Info("Worker stopped")
}

// scheduleRetry republishes the job with an incremented attempt counter
// after the backoff delay, consuming one more of the attempt budget.
func (w *Worker) scheduleRetry(msg *jobMessage, delay time.Duration) {
	w.retryWG.Add(1)
	go func() {
		defer w.retryWG.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-w.stopChan:
			w.logger.Warn("Pending retry dropped on shutdown",
				slog.String("job_id", msg.id),
				slog.String("job_name", string(msg.name)),
			)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := w.rabbitClient.PublishJob(ctx, msg.body, msg.id, msg.attempt+1); err != nil {
			w.logger.Error("Failed to republish job for retry",
				slog.String("job_id", msg.id),
				slog.String("job_name", string(msg.name)),
				slog.Any("error", err),
			)
			return
		}

		w.logger.Info("Job republished for retry",
			slog.String("job_id", msg.id),
			slog.String("job_name", string(msg.name)),
			slog.Int("next_attempt", msg.attempt+1),
		)
	}()
}
