package errors

import (
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
		name        string
		err         error
		debug       bool
		wantStatus  int
		wantType    ErrorType
		wantMessage string
	}{
		{"validation", NewValidationError("zoom out of range"), false, http.StatusBadRequest, ErrorTypeValidation, "zoom out of range"},
		{"not found", NewNotFoundError("act 42"), false, http.StatusNotFound, ErrorTypeNotFound, "act 42 not found"},
		{"limit", NewLimitError("nodes", 2), false, http.StatusUnprocessableEntity, ErrorTypeLimitExceeded, "maximum nodes reached: 2"},
		{"wrapped", fmt.Errorf("place: %w", NewConflictError("canvas exists")), false, http.StatusConflict, ErrorTypeConflict, "canvas exists"},
		{"internal hidden", NewInternalError("index corrupt"), false, http.StatusInternalServerError, ErrorTypeInternal, "An internal error occurred"},
		{"internal debug", NewInternalError("index corrupt"), true, http.StatusInternalServerError, ErrorTypeInternal, "index corrupt"},
		{"plain error", errors.New("boom"), false, http.StatusInternalServerError, ErrorTypeInternal, "An internal error occurred"},
		{"plain error debug", errors.New("boom"), true, http.StatusInternalServerError, ErrorTypeInternal, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewErrorHandler(zap.NewNop(), tt.debug)
			w := httptest.NewRecorder()
			h.Handle(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, string(tt.wantType), resp.Error.Type)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}

func TestErrorHandler_LimitDetails(t *testing.T) {
	w := httptest.NewRecorder()
	NewErrorHandler(zap.NewNop(), false).Handle(w, httptest.NewRequest(http.MethodGet, "/", nil), NewLimitError("connections", 10))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 10, resp.Error.Details["limit"])
}

func TestErrorHandler_MiddlewareRecoversPanic(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)
	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil canvas")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", NewNotFoundError("node"))))
	assert.True(t, IsLimitExceeded(NewLimitError("nodes", 1)))
	assert.False(t, IsValidation(errors.New("plain")))
	assert.Nil(t, GetAppError(errors.New("plain")))

	dbErr := NewDatabaseError("scan acts", errors.New("throttled"))
	assert.Equal(t, ErrorTypeDatabase, dbErr.Type)
	assert.NotEmpty(t, dbErr.StackTrace)
	assert.ErrorContains(t, dbErr, "throttled")
}
