package handler

import (
	"log/slog"

	"contentbe/internal/queue"
	"contentbe/internal/storage"
	"contentbe/shared/postgresql"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	DBClient  *postgresql.Client
	Publisher *queue.Publisher
	Storage   *storage.Storage
}

// Handlers serves the profile and article endpoints.
type Handlers struct {
	logger    *slog.Logger
	dbClient  *postgresql.Client
	publisher *queue.Publisher
	store     *storage.Storage
}

// New creates the handler set.
func New(deps *Dependencies) *Handlers {
	return &Handlers{
		logger:    deps.Logger,
		dbClient:  deps.DBClient,
		publisher: deps.Publisher,
		store:     deps.Storage,
	}
}
