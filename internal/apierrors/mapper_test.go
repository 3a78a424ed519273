package apierrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	authprocessor "whatsapp-hub/internal/auth/processor"
	linksprocessor "whatsapp-hub/internal/links/processor"
	"whatsapp-hub/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "link not found",
			err:        linksprocessor.ErrLinkNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "slug conflict",
			err:        linksprocessor.ErrSlugAlreadyExists,
			wantStatus: http.StatusConflict,
			wantCode:   "SLUG_ALREADY_EXISTS",
		},
		{
			name:       "foreign link",
			err:        linksprocessor.ErrUnauthorized,
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:       "duplicate email",
			err:        authprocessor.ErrEmailAlreadyExists,
			wantStatus: http.StatusConflict,
			wantCode:   "EMAIL_ALREADY_EXISTS",
		},
		{
			name:       "bad credentials",
			err:        authprocessor.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "store miss",
			err:        store.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "unknown error is sanitized",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(t)

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantCode, response.Code)
			assert.NotEmpty(t, response.Error)
		})
	}
}

// An internal error body must never leak the cause.
func TestInternalError_Sanitized(t *testing.T) {
	c, w := testContext(t)

	InternalError(c, errors.New("dial tcp 10.0.0.5:5432: i/o timeout"))

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotContains(t, response.Error, "10.0.0.5")
	assert.Equal(t, "INTERNAL_ERROR", response.Code)
}

func TestValidationError_NonValidatorError(t *testing.T) {
	c, w := testContext(t)

	ValidationError(c, errors.New("invalid character '}' looking for beginning of value"))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "INVALID_INPUT", response.Code)
	assert.Equal(t, "Invalid request body", response.Error)
}
