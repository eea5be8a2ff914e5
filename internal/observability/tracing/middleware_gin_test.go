package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/opsgrid/facilitypulse/internal/observability/logger"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func swapTracerProvider(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
	})
	return recorder
}

func newInstrumentedRouter(requestID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if requestID != "" {
		r.Use(func(c *gin.Context) {
			ctx := logger.WithRequestID(c.Request.Context(), requestID)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
	r.Use(GinMiddleware())
	return r
}

func attributeValue(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestGinMiddlewareRecordsRouteSpan(t *testing.T) {
	recorder := swapTracerProvider(t)

	r := newInstrumentedRouter("req-123")
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	require.Equal(t, "HTTP GET /ping", span.Name())

	route, ok := attributeValue(span.Attributes(), "http.route")
	require.True(t, ok)
	require.Equal(t, "/ping", route.AsString())

	status, ok := attributeValue(span.Attributes(), "http.status_code")
	require.True(t, ok)
	require.Equal(t, int64(http.StatusOK), status.AsInt64())

	requestID, ok := attributeValue(span.Attributes(), "request_id")
	require.True(t, ok)
	require.Equal(t, "req-123", requestID.AsString())

	require.NotEqual(t, codes.Error, span.Status().Code)
}

func TestGinMiddlewareMarksServerErrors(t *testing.T) {
	recorder := swapTracerProvider(t)

	r := newInstrumentedRouter("")
	r.GET("/boom", func(c *gin.Context) {
		c.AbortWithStatus(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestNewProviderDisabledNeverSamples(t *testing.T) {
	tp, err := NewProvider(nil, Config{Enabled: false, ServiceName: "facilitypulse"})
	require.NoError(t, err)
	require.NotNil(t, tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	_, span := tp.Tracer("facilitypulse/test").Start(context.Background(), "disabled-span")
	require.False(t, span.SpanContext().IsSampled())
	span.End()
}
