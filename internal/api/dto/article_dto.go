package dto

import "github.com/google/uuid"

type CreateArticleRequest struct {
	ProfileID uuid.UUID `json:"profile_id" binding:"required"`
	Title     string    `json:"title" binding:"required"`
	Content   string    `json:"content" binding:"required"`
}

// ArticleData is the public shape of an article. The owning profile is
// embedded; article content is not exposed.
type ArticleData struct {
	ID      uuid.UUID   `json:"id"`
	Title   string      `json:"title"`
	Profile ProfileData `json:"profile"`
}
