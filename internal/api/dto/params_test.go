package dto

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentbe/internal/apperr"
)

func bindParams(t *testing.T, rawQuery string) (Params, error) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)

	var p Params
	err := c.ShouldBindQuery(&p)
	return p, err
}

func TestParams_Defaults(t *testing.T) {
	p, err := bindParams(t, "")
	require.NoError(t, err)

	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultSize, p.Size)
	assert.NoError(t, p.Validate())
}

func TestParams_ExplicitZeroIsNotDefaulted(t *testing.T) {
	// size=0 must be rejected, not silently replaced with the default.
	p, err := bindParams(t, "size=0")
	require.NoError(t, err)

	assert.Equal(t, 0, p.Size)
	assert.Error(t, p.Validate())
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr string
	}{
		{name: "valid", params: Params{Page: 1, Size: 10}},
		{name: "max size", params: Params{Page: 1, Size: MaxSize}},
		{name: "zero page", params: Params{Page: 0, Size: 10}, wantErr: "page must be greater than or equal to 1"},
		{name: "negative page", params: Params{Page: -1, Size: 10}, wantErr: "page must be greater than or equal to 1"},
		{name: "zero size", params: Params{Page: 1, Size: 0}, wantErr: "size must be between 1 and 100"},
		{name: "oversized", params: Params{Page: 1, Size: MaxSize + 1}, wantErr: "size must be between 1 and 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)

			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, 400, appErr.Status)
			assert.Equal(t, tt.wantErr, appErr.Detail)
		})
	}
}

func TestParams_Offset(t *testing.T) {
	tests := []struct {
		page, size, want int
	}{
		{page: 1, size: 10, want: 0},
		{page: 2, size: 10, want: 10},
		{page: 3, size: 25, want: 50},
	}

	for _, tt := range tests {
		p := Params{Page: tt.page, Size: tt.size}
		assert.Equal(t, tt.want, p.Offset())
		assert.Equal(t, tt.size, p.Limit())
	}
}
