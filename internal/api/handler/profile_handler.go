package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"contentbe/internal/api/dto"
	"contentbe/internal/api/respond"
	"contentbe/internal/apperr"
	"contentbe/internal/model"
	"contentbe/internal/storage"
)

// ListProfiles handles GET /api/v1/profiles, paginated and ordered by name.
func (h *Handlers) ListProfiles(c *gin.Context, tx *sqlx.Tx) (respond.Result, error) {
	var params dto.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		return respond.Result{}, apperr.BadRequest("invalid query parameters")
	}
	if err := params.Validate(); err != nil {
		return respond.Result{}, err
	}

	items, total, err := h.store.Profiles.Paginate(
		c.Request.Context(), tx,
		nil, storage.OrderProfilesByName,
		params.Limit(), params.Offset(),
	)
	if err != nil {
		return respond.Result{}, err
	}

	return respond.PageOf(items, total, params.Page, params.Size), nil
}

// CreateProfile handles POST /api/v1/profiles. New profiles get the default
// user role.
func (h *Handlers) CreateProfile(c *gin.Context, tx *sqlx.Tx) (respond.Result, error) {
	var req dto.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return respond.Result{}, apperr.BadRequest("invalid request body")
	}

	profile := model.NewProfile(req.Name)
	if err := h.store.Profiles.Save(c.Request.Context(), tx, profile); err != nil {
		return respond.Result{}, err
	}

	return respond.Single(profile).WithRefresh(func(ctx context.Context) error {
		return h.store.Profiles.Refresh(ctx, h.dbClient.GetDB(), profile)
	}), nil
}
