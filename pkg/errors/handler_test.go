package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrorHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		debug      bool
		wantStatus int
		wantType   string
		wantError  string
	}{
		{"not found", NewProfessionalNotFoundError("42"), false, http.StatusNotFound, "NOT_FOUND", "专业人员不存在"},
		{"validation", NewValidationError("问题不能为空"), false, http.StatusBadRequest, "VALIDATION", "问题不能为空"},
		{"wrapped app error", fmt.Errorf("analyze: %w", NewUnavailableError("llm")), false, http.StatusServiceUnavailable, "UNAVAILABLE", "service 'llm' is unavailable"},
		{"timeout", NewTimeoutError("llm", context.DeadlineExceeded), false, http.StatusGatewayTimeout, "TIMEOUT", "service 'llm' timed out"},
		{"plain error hidden", errors.New("boom"), false, http.StatusInternalServerError, "INTERNAL", "An internal error occurred"},
		{"plain error in debug", errors.New("boom"), true, http.StatusInternalServerError, "INTERNAL", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewErrorHandler(zap.NewNop(), tt.debug)
			rec := httptest.NewRecorder()

			h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestAppErrorHelpers(t *testing.T) {
	cause := errors.New("throttled")
	err := NewDatabaseError("scan", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsType(err, ErrorTypeDatabase))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, http.StatusTooManyRequests, StatusCode(NewRateLimitError(10, "minute")))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(cause))
}
