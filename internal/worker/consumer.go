package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"contentbe/internal/queue"
	"contentbe/shared/rabbitmq"
)

// setupConsumer configures QoS on the consumer channel and starts consuming.
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	if err := w.rabbitClient.Qos(w.prefetchCount); err != nil {
		return nil, err
	}

	w.logger.Info("RabbitMQ QoS configured",
		slog.Int("prefetch_count", w.prefetchCount),
	)

	deliveries, err := w.rabbitClient.Consume(w.workerID)
	if err != nil {
		return nil, err
	}

	return deliveries, nil
}

// dispatch reads deliveries, decodes the job envelope and hands jobs to the
// worker pool. Messages that do not decode into the expected typed shape are
// rejected without requeue.
func (w *Worker) dispatch(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			var env queue.Envelope
			if err := json.Unmarshal(delivery.Body, &env); err != nil {
				w.logger.Error("Failed to decode job envelope",
					slog.String("error", err.Error()),
					slog.String("body", string(delivery.Body)),
				)
				w.reject(delivery)
				continue
			}

			if env.Job == "" {
				w.logger.Error("Job envelope missing job_name",
					slog.String("body", string(delivery.Body)),
				)
				w.reject(delivery)
				continue
			}

			msg := &jobMessage{
				name:     env.Job,
				payload:  env.Payload,
				body:     delivery.Body,
				id:       delivery.MessageId,
				attempt:  attemptFrom(delivery),
				delivery: delivery,
			}

			select {
			case w.jobsChan <- msg:
				w.logger.Debug("Job dispatched to worker pool",
					slog.String("job_id", msg.id),
					slog.String("job_name", string(msg.name)),
					slog.Int("attempt", msg.attempt),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching job")
				// Requeue so another worker picks the job up.
				if err := delivery.Nack(false, true); err != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.String("error", err.Error()),
					)
				}
				return
			}
		}
	}
}

// reject drops a malformed message without requeue.
func (w *Worker) reject(delivery amqp.Delivery) {
	if err := delivery.Nack(false, false); err != nil {
		w.logger.Error("Failed to NACK malformed message",
			slog.String("error", err.Error()),
		)
	}
}

// attemptFrom reads the 1-based attempt counter header, defaulting to the
// first attempt when absent.
func attemptFrom(delivery amqp.Delivery) int {
	raw, ok := delivery.Headers[rabbitmq.AttemptHeader]
	if !ok {
		return 1
	}
	switch v := raw.(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 1
	}
}
