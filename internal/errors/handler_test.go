package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishintel/internal/shared/testutil"
)

func newRequest(path string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	ctx := context.WithValue(r.Context(), middleware.RequestIDKey, "req-42")
	return r.WithContext(ctx)
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantExt    map[string]interface{}
	}{
		{
			name:       "deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "wrapped cancellation",
			err:        fmt.Errorf("read table: %w", context.Canceled),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "api not found",
			err:        NotFoundError("table"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantExt:    map[string]interface{}{"error_code": "NOT_FOUND", "details": "table"},
		},
		{
			name:       "api not published",
			err:        DataNotPublishedError(errors.New("no manifest")),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataNotPublished,
		},
		{
			name:       "api corrupted",
			err:        DataCorruptedError(errors.New("missing file")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeDataCorrupted,
		},
		{
			name:       "api invalid parameter",
			err:        ErrInvalidParameter,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "app not found",
			err:        fmt.Errorf("load: %w", NewNotFoundError("manifest")),
			wantStatus: http.StatusNotFound,
			wantType:   TypeDataNotFound,
			wantExt:    map[string]interface{}{"error_type": "NOT_FOUND"},
		},
		{
			name:       "app parsing",
			err:        NewParsingError("bad json", nil).WithContext("file", "manifest.json"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeDataCorrupted,
			wantExt:    map[string]interface{}{"file": "manifest.json"},
		},
		{
			name:       "app validation",
			err:        NewAppValidationError("bad limit"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "plain error",
			err:        errors.New("something went wrong"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			handler.HandleError(w, newRequest("/api/data/x"), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/data/x", body["instance"])
			assert.Equal(t, "req-42", body["trace_id"])
			assert.NotContains(t, body, "stack")
			for k, v := range tt.wantExt {
				assert.Equal(t, v, body[k], k)
			}

			assert.True(t, logs.ContainsMessage("request failed"))
			assert.True(t, logs.ContainsAttr("request_id", "req-42"))
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	w := httptest.NewRecorder()

	NewErrorHandler(logger, false).HandleError(w, newRequest("/"), nil)

	assert.Zero(t, w.Body.Len())
	assert.Zero(t, logs.Count())
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	w := httptest.NewRecorder()

	NewErrorHandler(logger, true).HandleError(w, newRequest("/"), errors.New("boom"))

	body := decodeProblem(t, w)
	assert.NotEmpty(t, body["stack"])
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.NotFound(w, newRequest("/nope"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/manifest", nil)
	handler.MethodNotAllowed(w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, decodeProblem(t, w)["detail"], "POST")
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	mw := RecoveryMiddleware(NewErrorHandler(logger, false))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected nil manifest")
	})

	w := httptest.NewRecorder()
	require.NotPanics(t, func() { mw(next).ServeHTTP(w, newRequest("/api/manifest")) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, TypeInternal, decodeProblem(t, w)["type"])
	assert.True(t, logs.ContainsMessage("panic recovered"))
}
