package handler

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentbe/internal/api/respond"
	"contentbe/internal/apperr"
	"contentbe/shared/logger"
	"contentbe/shared/postgresql"
)

// txRecorder counts transaction outcomes at the driver level.
type txRecorder struct {
	begins    int
	commits   int
	rollbacks int
	commitErr error
}

type recordingDriver struct{}

var (
	recorderMu  sync.Mutex
	recorders   = map[string]*txRecorder{}
	registerOne sync.Once
)

func (d *recordingDriver) Open(name string) (driver.Conn, error) {
	recorderMu.Lock()
	defer recorderMu.Unlock()
	return &recordingConn{rec: recorders[name]}, nil
}

type recordingConn struct {
	rec *txRecorder
}

func (c *recordingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("queries not supported")
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) Begin() (driver.Tx, error) {
	c.rec.begins++
	return &recordingTx{rec: c.rec}, nil
}

type recordingTx struct {
	rec *txRecorder
}

func (t *recordingTx) Commit() error {
	t.rec.commits++
	return t.rec.commitErr
}

func (t *recordingTx) Rollback() error {
	t.rec.rollbacks++
	return nil
}

// newTxHarness builds Handlers over a driver that records transaction
// outcomes, plus a router with a minimal error-to-status mapper standing in
// for the global error middleware (importing it here would be an import
// cycle).
func newTxHarness(t *testing.T, fn TxHandler) (*txRecorder, *gin.Engine) {
	t.Helper()

	registerOne.Do(func() {
		sql.Register("txrecorder", &recordingDriver{})
	})

	rec := &txRecorder{}
	recorderMu.Lock()
	recorders[t.Name()] = rec
	recorderMu.Unlock()

	db, err := sql.Open("txrecorder", t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := New(&Dependencies{
		Logger:   logger.NewDefault().Logger,
		DBClient: postgresql.NewClientFromDB(sqlx.NewDb(db, "txrecorder"), logger.NewDefault().Logger),
	})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		var appErr *apperr.Error
		if errors.As(c.Errors.Last().Err, &appErr) {
			c.JSON(appErr.Status, gin.H{"detail": appErr.Detail})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	})
	r.GET("/op", h.Transactional(fn))

	return rec, r
}

func doOp(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/op", nil))
	return w
}

func TestTransactional_SuccessCommitsOnce(t *testing.T) {
	rec, r := newTxHarness(t, func(c *gin.Context, tx *sqlx.Tx) (respond.Result, error) {
		return respond.Single(map[string]string{"name": "anvil"}), nil
	})

	w := doOp(r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, rec.commits)
	assert.Equal(t, 0, rec.rollbacks)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "anvil", body.Data["name"])
}

func TestTransactional_HandlerErrorRollsBack(t *testing.T) {
	rec, r := newTxHarness(t, func(c *gin.Context, tx *sqlx.Tx) (respond.Result, error) {
		return respond.Result{}, apperr.BadRequest("invalid request body")
	})

	w := doOp(r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, rec.commits)
	assert.Equal(t, 1, rec.rollbacks)
}

func TestTransactional_EmptyIsNotFound(t *testing.T) {
	rec, r := newTxHarness(t, func(c *gin.Context, tx *sqlx.Tx) (respond.Result, error) {
		return respond.Empty(), nil
	})

	w := doOp(r)

	// Empty maps to 404 after the commit: the handler did not fail, it
	// found nothing.
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, rec.commits)
	assert.Equal(t, 0, rec.rollbacks)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "object not found", body["detail"])
}

func TestTransactional_CommitFailurePropagates(t *testing.T) {
	rec, r := newTxHarness(t, func(c *gin.Context, tx *sqlx.Tx) (respond.Result, error) {
		return respond.Single(map[string]string{"name": "anvil"}), nil
	})
	rec.commitErr = fmt.Errorf("connection reset")

	w := doOp(r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, rec.commits)
	// The failed commit already finalized the transaction; no rollback
	// reaches the driver.
	assert.Equal(t, 0, rec.rollbacks)
}

func TestTransactional_RefreshErrorPropagates(t *testing.T) {
	rec, r := newTxHarness(t, func(c *gin.Context, tx *sqlx.Tx) (respond.Result, error) {
		res := respond.Single(map[string]string{"name": "anvil"}).WithRefresh(func(ctx context.Context) error {
			return apperr.NotFound("object not found")
		})
		return res, nil
	})

	w := doOp(r)

	// The refresh runs only after a successful commit.
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, rec.commits)
	assert.Equal(t, 0, rec.rollbacks)
}

func TestTransactional_RawPassesThrough(t *testing.T) {
	rec, r := newTxHarness(t, func(c *gin.Context, tx *sqlx.Tx) (respond.Result, error) {
		return respond.Raw(http.StatusAccepted, gin.H{"state": "queued"}), nil
	})

	w := doOp(r)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, rec.commits)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "queued", body["state"])
}
