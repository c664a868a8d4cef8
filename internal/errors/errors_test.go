package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Constructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "not found",
			err:        NotFoundError("table"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "table not found",
		},
		{
			name:       "not published",
			err:        DataNotPublishedError(errors.New("manifest missing")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "DATA_NOT_PUBLISHED",
			wantMsg:    "No published dataset is available",
		},
		{
			name:       "corrupted",
			err:        DataCorruptedError(errors.New("file missing")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "DATA_CORRUPTED",
			wantMsg:    "Published dataset is inconsistent",
		},
		{
			name:       "filesystem",
			err:        FileSystemError("read", errors.New("permission denied")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "FILESYSTEM_ERROR",
			wantMsg:    "File system error during read",
		},
		{
			name:       "predefined",
			err:        ErrRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMIT_EXCEEDED",
			wantMsg:    "Rate limit exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/api/data/x").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeNotFound, got["type"])
	assert.Equal(t, float64(http.StatusNotFound), got["status"])
	assert.Equal(t, "/api/data/x", got["instance"])
	assert.Equal(t, "abc", got["trace_id"])
	assert.NotContains(t, got, "detail")
}
