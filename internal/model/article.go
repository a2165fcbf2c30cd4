package model

import (
	"contentbe/internal/api/dto"

	"github.com/google/uuid"
)

// Article belongs to exactly one profile. The profile is always fetched
// eagerly alongside the article (single joined query, never re-fetched).
type Article struct {
	Meta
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	ProfileID uuid.UUID `db:"profile_id" json:"profile_id"`
	Profile   Profile   `db:"profile" json:"profile"`
}

// NewArticle creates an unsaved article owned by the given profile. The
// caller is responsible for checking that the profile exists before insert.
func NewArticle(profileID uuid.UUID, title, content string) *Article {
	return &Article{
		Meta:      NewMeta(),
		Title:     title,
		Content:   content,
		ProfileID: profileID,
	}
}

// ResponseData implements respond.Responder. Content is deliberately not
// part of the public shape.
func (a *Article) ResponseData() any {
	return dto.ArticleData{
		ID:    a.ID,
		Title: a.Title,
		Profile: dto.ProfileData{
			ID:   a.Profile.ID,
			Name: a.Profile.Name,
			Role: string(a.Profile.Role),
		},
	}
}
