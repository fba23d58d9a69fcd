package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TestCorrelationIDMiddleware_Generates verifies a correlation ID is minted,
// placed in context, and echoed in the response header.
func TestCorrelationIDMiddleware_Generates(t *testing.T) {
	var seenInContext string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v, ok := r.Context().Value("correlation_id").(string); ok {
			seenInContext = v
		}
		if _, ok := r.Context().Value("logger").(*zap.Logger); !ok {
			t.Error("request context missing tagged logger")
		}
	})

	handler := CorrelationIDMiddleware(zap.NewNop())(next)
	req := httptest.NewRequest(http.MethodGet, "/api/weather/current", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	header := rec.Header().Get("X-Correlation-ID")
	if header == "" {
		t.Fatal("X-Correlation-ID header not set")
	}
	if header != seenInContext {
		t.Errorf("header ID %q != context ID %q", header, seenInContext)
	}
}

// TestCorrelationIDMiddleware_Propagates verifies a caller-supplied ID is
// reused rather than replaced.
func TestCorrelationIDMiddleware_Propagates(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := CorrelationIDMiddleware(zap.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "caller-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != "caller-supplied-id" {
		t.Errorf("X-Correlation-ID = %q, want caller-supplied-id", got)
	}
}

// TestRateLimitMiddleware verifies requests past the burst get a 429 with an
// error body, and that a nil limiter disables limiting.
func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("denies past burst", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Limit(1), 1)
		handler := RateLimitMiddleware(limiter)(next)

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/weather/current", nil))
		if first.Code != http.StatusOK {
			t.Fatalf("first request status = %d, want 200", first.Code)
		}

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/weather/current", nil))
		if second.Code != http.StatusTooManyRequests {
			t.Fatalf("second request status = %d, want 429", second.Code)
		}
		if !strings.Contains(second.Body.String(), "Too many requests") {
			t.Errorf("body = %s, want rate limit message", second.Body.String())
		}
	})

	t.Run("nil limiter passes through", func(t *testing.T) {
		handler := RateLimitMiddleware(nil)(next)
		for i := 0; i < 10; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("request %d status = %d, want 200", i, rec.Code)
			}
		}
	})
}

// TestTimeoutMiddleware verifies a deadline is installed on the request
// context.
func TestTimeoutMiddleware(t *testing.T) {
	var hadDeadline bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadDeadline = r.Context().Deadline()
	})

	handler := TimeoutMiddleware(5 * time.Second)(next)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/weather/current", nil))

	if !hadDeadline {
		t.Error("request context has no deadline")
	}
}

// TestGetRoute verifies unknown paths collapse into a bounded label.
func TestGetRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/api/weather/current", want: "/api/weather/current"},
		{path: "/health", want: "/health"},
		{path: "/api/weather/current/extra", want: "other"},
		{path: "/favicon.ico", want: "other"},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if got := getRoute(r); got != tt.want {
			t.Errorf("getRoute(%s) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

// TestMetricsMiddleware_CountsInFlight verifies the tracker returns to zero
// after the request completes.
func TestMetricsMiddleware_CountsInFlight(t *testing.T) {
	var during int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = InFlightCount()
	})

	handler := MetricsMiddleware(next)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if during < 1 {
		t.Errorf("in-flight count during request = %d, want >= 1", during)
	}
	if after := InFlightCount(); after != during-1 {
		t.Errorf("in-flight count after request = %d, want %d", after, during-1)
	}
}
