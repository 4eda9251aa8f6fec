package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func discardLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWithRequestLogging_CapturesStatusAndMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	h := WithRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}), discardLogger(), m)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rr.Code)
	}

	if got := testutil.ToFloat64(m.Requests.WithLabelValues("GET", "418")); got != 1 {
		t.Fatalf("requests_total=%v want 1", got)
	}
	if got := testutil.CollectAndCount(m.RequestDuration); got == 0 {
		t.Fatalf("expected duration samples to be collected")
	}
}

func TestWithRequestLogging_DefaultStatusIsOK(t *testing.T) {
	h := WithRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("implicit 200"))
	}), discardLogger(), nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestLoggingResponseWriter_Unwrap(t *testing.T) {
	rr := httptest.NewRecorder()
	lrw := &loggingResponseWriter{ResponseWriter: rr, status: http.StatusOK}

	if lrw.Unwrap() != rr {
		t.Fatalf("Unwrap must return the underlying writer")
	}

	// Flush must not panic and must reach the recorder.
	lrw.Flush()
	if !rr.Flushed {
		t.Fatalf("expected flush to propagate")
	}
}
