package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ignitoosolutions/ignito1/internal/platform/requestctx"
)

func TestNewLoggerLevels(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("nonsense")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestEventsPrefersRequestLogger(t *testing.T) {
	fallbackCore, fallbackLogs := observer.New(zapcore.DebugLevel)
	requestCore, requestLogs := observer.New(zapcore.DebugLevel)
	events := Events(zap.New(fallbackCore), "cart")

	events(context.Background(), "cart.add", map[string]any{"b": 2, "a": 1})
	require.Equal(t, 1, fallbackLogs.Len())
	entry := fallbackLogs.All()[0]
	assert.Equal(t, "cart", entry.Message)
	assert.Equal(t, "cart.add", entry.ContextMap()["event"])
	assert.EqualValues(t, 1, entry.ContextMap()["a"])

	ctx := WithLogger(context.Background(), zap.New(requestCore))
	events(ctx, "cart.remove", nil)
	assert.Equal(t, 1, requestLogs.Len())
	assert.Equal(t, 1, fallbackLogs.Len())

	NopEvents()(ctx, "ignored", nil)
}

func TestRequestLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := middleware.RequestID(
		InjectLoggerMiddleware(zap.New(core))(
			RequestLoggerMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte("bad"))
			})),
		),
	)

	req := httptest.NewRequest(http.MethodPost, "/cart/items?x=1", nil)
	req = req.WithContext(requestctx.WithVisitor(req.Context(), "visitor-1"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.EqualValues(t, http.StatusBadRequest, fields["status"])
	assert.Equal(t, "/cart/items", fields["path"])
	assert.Equal(t, "visitor-1", fields["visitor_id"])
	assert.EqualValues(t, 3, fields["bytes"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_server_error")
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestTraceMiddlewareContinuesTrace(t *testing.T) {
	var info requestctx.TraceInfo
	handler := TraceMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, _ = requestctx.Trace(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", info.TraceID)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "GET", SanitizeMethod(" "))
	assert.Equal(t, "POST", SanitizeMethod("post"))
	assert.Equal(t, "/", SanitizeRoute("?q=1"))
	assert.Equal(t, "/a", SanitizeRoute("/a\n?b"))
}
