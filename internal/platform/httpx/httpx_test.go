package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignitoosolutions/ignito1/internal/platform/requestctx"
)

func TestWriteErrorEnvelope(t *testing.T) {
	ctx := requestctx.WithTrace(context.Background(), requestctx.TraceInfo{TraceID: "abc123"})
	rec := httptest.NewRecorder()

	WriteError(ctx, rec, NewError("cart_empty", "line one\nline two", http.StatusBadRequest).WithDetails(map[string]any{"field": "items"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "cart_empty", payload["error"])
	assert.Equal(t, "line one line two", payload["message"])
	assert.EqualValues(t, 400, payload["status"])
	assert.Equal(t, "abc123", payload["trace_id"])
	assert.Equal(t, "items", payload["field"])
	_, hasRequestID := payload["request_id"]
	assert.False(t, hasRequestID)
}

func TestNewErrorDefaultsStatus(t *testing.T) {
	err := NewError(strings.Repeat("x", 100), "boom", 0)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Len(t, err.Code, 80)
	assert.Equal(t, err, err.WithDetails(nil))
}

func TestWriteSubmission(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSubmission(rec, http.StatusOK, SubmissionResponse{Status: StatusSuccess, OrderID: "01X"})

	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"status":"success","orderId":"01X"}`, rec.Body.String())
}

func TestDecodeSubmission(t *testing.T) {
	resp, err := DecodeSubmission(strings.NewReader(`{"status":"error","message":"Missing required information."}`))
	require.NoError(t, err)
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "Missing required information.", resp.Message)

	for _, body := range []string{"", "<html>oops</html>", `["success"]`} {
		_, err := DecodeSubmission(strings.NewReader(body))
		assert.Error(t, err, body)
	}
}

func TestReadLimitedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader("12345"))
	body, err := ReadLimitedBody(req, 5)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(body))

	req = httptest.NewRequest(http.MethodPost, "/order", strings.NewReader("123456"))
	_, err = ReadLimitedBody(req, 5)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestNewClient(t *testing.T) {
	client := NewClient(0)
	assert.Equal(t, defaultClientTimeout, client.Timeout)
	assert.NotNil(t, client.Jar)
	assert.Equal(t, 2*time.Second, NewClient(2*time.Second).Timeout)
}
