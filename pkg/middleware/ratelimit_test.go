package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(rate.Limit(1), 1))
	r.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// Burst of 1 is consumed; immediate follow-ups must hit the limit.
	limited := false
	for i := 0; i < 5; i++ {
		w2 := httptest.NewRecorder()
		r.ServeHTTP(w2, req)
		if w2.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("expected 429 after exceeding burst")
	}
}

func TestGetLimiterReusesEntryPerIP(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1)
	first := l.GetLimiter("10.0.0.1")
	if l.GetLimiter("10.0.0.1") != first {
		t.Fatalf("expected the same limiter for a repeated IP")
	}
	if l.GetLimiter("10.0.0.2") == first {
		t.Fatalf("expected a distinct limiter per IP")
	}
}
