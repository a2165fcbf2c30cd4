package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"contentbe/internal/api/respond"
	"contentbe/internal/apperr"
)

// TxHandler is a request handler running inside a transaction. It returns a
// tagged result: a single record, a page, a raw response, or empty.
type TxHandler func(c *gin.Context, tx *sqlx.Tx) (respond.Result, error)

// Transactional wraps a handler so that exactly one of commit-then-respond
// or rollback-then-propagate happens per request:
//
//  1. invoke the handler
//  2. commit the transaction (rollback and propagate if anything failed)
//  3. refresh committed single results that carry a refresher, to pick up
//     values the database computed at commit time
//  4. empty results become NotFound
//  5. page items are converted to their serializable form
//  6. raw responses pass through unchanged
//  7. everything else is wrapped in the {data: ...} envelope
//
// Propagated errors are recorded on the gin context for the global error
// middleware to map.
func (h *Handlers) Transactional(fn TxHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tx, err := h.dbClient.BeginTx(ctx)
		if err != nil {
			_ = c.Error(apperr.ServiceUnavailable("database unavailable"))
			return
		}

		res, err := fn(c, tx)
		if err != nil {
			h.rollback(tx)
			_ = c.Error(err)
			return
		}

		if err := tx.Commit(); err != nil {
			// A failed commit still finalizes the transaction; rolling
			// back here would only report ErrTxDone.
			_ = c.Error(err)
			return
		}

		// The transaction is closed from here on; refreshes read committed
		// rows through the pool.
		if res.Kind() == respond.KindSingle {
			if err := res.Refresh(ctx); err != nil {
				_ = c.Error(err)
				return
			}
		}

		switch res.Kind() {
		case respond.KindEmpty:
			_ = c.Error(apperr.NotFound("object not found"))
		case respond.KindPage:
			c.JSON(http.StatusOK, res.PageEnvelope())
		case respond.KindRaw:
			status, body := res.RawBody()
			c.JSON(status, body)
		default:
			c.JSON(http.StatusOK, res.Envelope())
		}
	}
}

func (h *Handlers) rollback(tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil {
		h.logger.Error("Failed to roll back transaction",
			slog.Any("error", err),
		)
	}
}
