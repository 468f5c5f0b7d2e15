package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("GET", "/healthz", 200, 12*time.Millisecond)
	RecordLateResult()
	SetPendingRequests(3)
	SetCacheEntries(7)
	RecordLanguageChange()
	RecordOverlayEvent("created")
	SetLiveOverlays(2)
	RecordFrame(4)
	RecordSinkDrop("redis")

	before := testutil.ToFloat64(translationRequests.WithLabelValues("cached"))
	RecordTranslation("cached")
	if got := testutil.ToFloat64(translationRequests.WithLabelValues("cached")); got != before+1 {
		t.Fatalf("cached counter = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(translationPending); got != 3 {
		t.Fatalf("pending gauge = %v, want 3", got)
	}
}

func TestMiddlewareRecordsAndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core).Sugar()), RequestMetricsMiddleware())
	router.GET("/missing/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/missing/:id", "404"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing/42", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/missing/:id", "404")); got != before+1 {
		t.Fatalf("request counter = %v, want %v", got, before+1)
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for 404, got %v", entries[0].Level)
	}
	if entries[0].ContextMap()["path"] != "/missing/:id" {
		t.Fatalf("expected route path, got %v", entries[0].ContextMap()["path"])
	}
}
