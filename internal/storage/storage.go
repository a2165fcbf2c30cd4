// Package storage wires the domain record types to their table descriptors.
// It is shared by the API handlers and the worker; all calls run against the
// transaction (or pool) the caller supplies.
package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"contentbe/internal/entity"
	"contentbe/internal/model"
)

const (
	// OrderProfilesByName is the default ordering for profile listings.
	OrderProfilesByName = "profiles.name ASC"
	// OrderArticlesByRecency lists most-recently-updated articles first.
	OrderArticlesByRecency = "articles.updated_at DESC"
)

// articleColumns eagerly joins the owning profile into every article read,
// so the relation never needs a second fetch.
const articleColumns = `articles.id, articles.title, articles.content, articles.profile_id,
		articles.created_at, articles.updated_at,
		profiles.id AS "profile.id", profiles.name AS "profile.name", profiles.role AS "profile.role",
		profiles.created_at AS "profile.created_at", profiles.updated_at AS "profile.updated_at"`

// Storage bundles the per-entity stores.
type Storage struct {
	Profiles *entity.Store[model.Profile]
	Articles *entity.Owned[model.Article]
}

// NewStorage builds the stores with their table descriptors.
func NewStorage() *Storage {
	profiles := entity.NewStore[model.Profile](entity.Descriptor{
		Name:          "Profile",
		Table:         "profiles",
		Columns:       "profiles.id, profiles.name, profiles.role, profiles.created_at, profiles.updated_at",
		InsertColumns: []string{"id", "name", "role", "created_at", "updated_at"},
		UpdateColumns: []string{"name", "role"},
	})

	articles := entity.NewStore[model.Article](entity.Descriptor{
		Name:          "Article",
		Table:         "articles",
		From:          "articles JOIN profiles ON profiles.id = articles.profile_id",
		IDColumn:      "articles.id",
		Columns:       articleColumns,
		InsertColumns: []string{"id", "title", "content", "profile_id", "created_at", "updated_at"},
		UpdateColumns: []string{"title", "content"},
	})

	return &Storage{
		Profiles: profiles,
		Articles: entity.NewOwned(articles, "articles.profile_id"),
	}
}

// ProfileExists reports whether a profile row with the given id exists.
func (s *Storage) ProfileExists(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (bool, error) {
	return s.Profiles.Exists(ctx, q, entity.Where("profiles.id = ?", id))
}
