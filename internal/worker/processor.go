package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"contentbe/internal/queue"
)

const (
	// processArticleRetryBase is the linear backoff base for failed
	// process_article_job attempts.
	processArticleRetryBase = 60 * time.Second

	// processArticleDuration simulates the article enrichment work.
	processArticleDuration = 5 * time.Second
)

// processArticle is the body of process_article_job: it loads the freshly
// created article together with its profile and performs the deferred
// per-article side work.
func (w *Worker) processArticle(ctx context.Context, payload json.RawMessage) error {
	var data queue.ProcessArticlePayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if data.ArticleID == uuid.Nil {
		return fmt.Errorf("%w: missing article_id", ErrInvalidPayload)
	}

	article, err := w.store.Articles.GetByID(ctx, w.dbClient.GetDB(), data.ArticleID, nil)
	if err != nil {
		return fmt.Errorf("failed to load article %s: %w", data.ArticleID, err)
	}

	w.logger.Info("Processing article",
		slog.String("article_id", article.ID.String()),
		slog.String("title", article.Title),
		slog.String("profile", article.Profile.Name),
		slog.Int("content_size", len(article.Content)),
	)

	select {
	case <-time.After(processArticleDuration):
	case <-ctx.Done():
		return fmt.Errorf("article processing canceled: %w", ctx.Err())
	}

	w.logger.Info("Done processing article",
		slog.String("article_id", article.ID.String()),
	)

	return nil
}
