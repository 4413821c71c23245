package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	t.Run("logs method path and status", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		logger := zap.New(core)

		handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("missing"))
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/indicators", nil))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		fields := entry.ContextMap()
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/api/indicators", fields["path"])
		assert.Equal(t, int64(http.StatusNotFound), fields["status"])
		assert.Equal(t, int64(len("missing")), fields["bytes"])
	})

	t.Run("nil logger passes through", func(t *testing.T) {
		called := false
		handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.True(t, called)
	})
}
