package worker

import (
	"context"
	"fmt"
	"log/slog"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Info("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Info("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				w.logger.Info("Worker goroutine stopping - jobsChan closed",
					slog.String("worker_name", workerName),
				)
				return
			}

			w.runJob(ctx, workerName, msg)
		}
	}
}

// runJob executes one job attempt and settles the message. Failures go
// through the task's retry policy: terminal failures and local-environment
// failures are logged and dropped; everything else is rescheduled with
// linear backoff. The original delivery is always acknowledged - retries
// travel as fresh messages carrying the incremented attempt counter.
func (w *Worker) runJob(ctx context.Context, workerName string, msg *jobMessage) {
	log := w.logger.With(
		slog.String("worker_name", workerName),
		slog.String("job_id", msg.id),
		slog.String("job_name", string(msg.name)),
		slog.Int("attempt", msg.attempt),
	)

	task, ok := w.tasks[msg.name]
	if !ok {
		log.Error("Unknown job name, discarding message")
		w.reject(msg.delivery)
		return
	}

	log.Info("Job running")

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	err := task.Run(jobCtx, msg.payload)
	cancel()

	if err == nil {
		log.Info("Job succeeded")
		w.ack(msg, log)
		return
	}

	decision := w.retry.OnFailure(msg.attempt, task.BaseDelay)
	switch decision.Outcome {
	case OutcomeRetryScheduled:
		log.Error("Job failed and will be retried",
			slog.Duration("retry_delay", decision.Delay),
			slog.Any("error", err),
		)
		w.scheduleRetry(msg, decision.Delay)

	case OutcomeFailedTerminal:
		log.Error("Job failed and there will be no more retries",
			slog.Any("error", err),
		)

	default:
		log.Error("Job failed and will NOT be retried",
			slog.Any("error", err),
		)
	}

	w.ack(msg, log)
}

func (w *Worker) ack(msg *jobMessage, log *slog.Logger) {
	if err := msg.delivery.Ack(false); err != nil {
		log.Error("Failed to ACK message",
			slog.String("error", err.Error()),
		)
	}
}
