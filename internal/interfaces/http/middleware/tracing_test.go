package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs a recording tracer provider for the test's lifetime
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func newTracedRouter(enabled bool, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(
		Tracing(TracingConfig{ServiceName: "wms-test", Enabled: enabled}),
		TracingEnrichment(),
	)
	router.GET("/stock", handler)
	return router
}

func spanAttribute(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range span.Attributes() {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingMiddleware(t *testing.T) {
	t.Run("disabled tracing serves requests without spans", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := newTracedRouter(false, func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/stock", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, sr.Ended())
	})

	t.Run("names the span after the route pattern", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := newTracedRouter(true, func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/stock", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "GET /stock", spans[0].Name())
	})

	t.Run("enriches the span with request and tenant identifiers", func(t *testing.T) {
		sr := setupTestTracer(t)
		tenantID := "0b4f8f4e-6a2f-4f3b-9a3f-6d1c1ad2b9aa"

		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(
			Tracing(TracingConfig{ServiceName: "wms-test", Enabled: true}),
			TracingEnrichment(),
		)
		router.Use(func(c *gin.Context) {
			c.Set(RequestIDKey, "req-42")
			c.Set(TenantIDKey, tenantID)
			c.Next()
		})
		router.GET("/stock", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/stock", nil)
		router.ServeHTTP(w, req)

		spans := sr.Ended()
		require.Len(t, spans, 1)

		got, ok := spanAttribute(spans[0], "request_id")
		require.True(t, ok)
		assert.Equal(t, "req-42", got.AsString())

		got, ok = spanAttribute(spans[0], "tenant_id")
		require.True(t, ok)
		assert.Equal(t, tenantID, got.AsString())
	})

	t.Run("marks error responses on the span", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := newTracedRouter(true, func(c *gin.Context) {
			c.JSON(http.StatusConflict, gin.H{"error": "already accepted"})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/stock", nil)
		router.ServeHTTP(w, req)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})
}
