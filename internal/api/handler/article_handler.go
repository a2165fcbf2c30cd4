package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"contentbe/internal/api/dto"
	"contentbe/internal/api/respond"
	"contentbe/internal/apperr"
	"contentbe/internal/model"
	"contentbe/internal/queue"
	"contentbe/internal/storage"
)

// ListArticles handles GET /api/v1/articles, paginated and ordered by most
// recently updated first. Each article carries its eagerly joined profile.
func (h *Handlers) ListArticles(c *gin.Context, tx *sqlx.Tx) (respond.Result, error) {
	var params dto.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		return respond.Result{}, apperr.BadRequest("invalid query parameters")
	}
	if err := params.Validate(); err != nil {
		return respond.Result{}, err
	}

	items, total, err := h.store.Articles.Paginate(
		c.Request.Context(), tx,
		nil, storage.OrderArticlesByRecency,
		params.Limit(), params.Offset(),
	)
	if err != nil {
		return respond.Result{}, err
	}

	return respond.PageOf(items, total, params.Page, params.Size), nil
}

// CreateArticle handles POST /api/v1/articles. The referenced profile must
// exist before the insert; on success a processing job is enqueued with the
// new article's id.
func (h *Handlers) CreateArticle(c *gin.Context, tx *sqlx.Tx) (respond.Result, error) {
	var req dto.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return respond.Result{}, apperr.BadRequest("invalid request body")
	}

	ctx := c.Request.Context()

	exists, err := h.store.ProfileExists(ctx, tx, req.ProfileID)
	if err != nil {
		return respond.Result{}, err
	}
	if !exists {
		return respond.Result{}, apperr.NotFound(fmt.Sprintf("Profile %s not found", req.ProfileID))
	}

	article := model.NewArticle(req.ProfileID, req.Title, req.Content)
	if err := h.store.Articles.Save(ctx, tx, article); err != nil {
		return respond.Result{}, err
	}

	if _, err := h.publisher.Enqueue(ctx, queue.JobProcessArticle, queue.ProcessArticlePayload{
		ArticleID: article.ID,
	}); err != nil {
		return respond.Result{}, err
	}

	// Re-read within the transaction so the response carries the joined
	// profile.
	loaded, err := h.store.Articles.GetByID(ctx, tx, article.ID, nil)
	if err != nil {
		return respond.Result{}, err
	}

	return respond.Single(loaded).WithRefresh(func(ctx context.Context) error {
		return h.store.Articles.Refresh(ctx, h.dbClient.GetDB(), loaded)
	}), nil
}
