// Package queue defines the background job wire contract: the job name
// enum, the typed payload shapes, and the publisher that submits them.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"contentbe/shared/rabbitmq"
)

// JobName identifies a job kind on the wire.
type JobName string

const (
	// JobProcessArticle performs the deferred per-article side work after
	// an article is created.
	JobProcessArticle JobName = "process_article_job"
)

// Envelope is the flat message written to the queue. Payload fields that are
// unset are omitted rather than sent as null.
type Envelope struct {
	Job     JobName         `json:"job_name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ProcessArticlePayload is the job data for JobProcessArticle.
type ProcessArticlePayload struct {
	ArticleID uuid.UUID `json:"article_id,omitzero"`
}

// Job is the handle returned for a submitted job.
type Job struct {
	ID   string
	Name JobName
}

// Publisher submits jobs to the queue backend. Each Enqueue call opens its
// own channel on the broker connection; callers must not assume any pooling.
type Publisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewPublisher creates a publisher over an established broker connection.
func NewPublisher(client *rabbitmq.Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// Enqueue serializes the payload under the job name and submits it. It does
// not block on job completion.
func (p *Publisher) Enqueue(ctx context.Context, name JobName, payload any) (*Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", name, err)
	}

	body, err := json.Marshal(Envelope{Job: name, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s envelope: %w", name, err)
	}

	jobID := uuid.NewString()
	if err := p.client.PublishJob(ctx, body, jobID, 1); err != nil {
		return nil, fmt.Errorf("failed to enqueue %s: %w", name, err)
	}

	p.logger.Info("Job enqueued",
		slog.String("job_name", string(name)),
		slog.String("job_id", jobID),
	)

	return &Job{ID: jobID, Name: name}, nil
}
