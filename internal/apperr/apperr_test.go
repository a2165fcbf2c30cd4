package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantStatus int
	}{
		{name: "bad request", err: BadRequest("bad"), wantStatus: http.StatusBadRequest},
		{name: "unauthorized", err: Unauthorized("nope"), wantStatus: http.StatusUnauthorized},
		{name: "payment required", err: PaymentRequired("pay up"), wantStatus: http.StatusPaymentRequired},
		{name: "not found", err: NotFound("missing"), wantStatus: http.StatusNotFound},
		{name: "too many requests", err: TooManyRequests("slow down"), wantStatus: http.StatusTooManyRequests},
		{name: "server error", err: ServerError("boom"), wantStatus: http.StatusInternalServerError},
		{name: "service unavailable", err: ServiceUnavailable("later"), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.Equal(t, tt.err.Detail, tt.err.Error())
		})
	}
}

func TestError_UnwrapsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("creating profile: %w", NotFound("missing"))

	var appErr *Error
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "missing", appErr.Detail)
}

func TestInvalidLoginCodeError(t *testing.T) {
	err := &InvalidLoginCodeError{Session: "sess-1234"}
	assert.Equal(t, "Login code was invalid", err.Error())
	assert.Equal(t, "sess-1234", err.Session)
}
