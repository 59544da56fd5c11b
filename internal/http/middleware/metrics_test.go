package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RoutesSurfacesAndUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())

	r.GET("/api/v1/letters/:id", func(c *gin.Context) { c.String(http.StatusOK, "dear") })
	r.POST("/interaction-guard", func(c *gin.Context) { c.Status(http.StatusTooManyRequests) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	letter := httpReqs.WithLabelValues(SurfaceAPI, "GET", "/api/v1/letters/:id", "200")
	guard := httpReqs.WithLabelValues(SurfaceGuard, "POST", "/interaction-guard", "429")
	health := httpReqs.WithLabelValues(SurfaceOps, "GET", "/health", "204")
	unmatched := httpReqs.WithLabelValues(SurfaceAPI, "GET", "unmatched", "404")
	baseLetter, baseGuard := testutil.ToFloat64(letter), testutil.ToFloat64(guard)
	baseHealth, baseUnmatched := testutil.ToFloat64(health), testutil.ToFloat64(unmatched)

	do := func(method, path string, want int) {
		t.Helper()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		if w.Code != want {
			t.Fatalf("%s %s -> %d; want %d", method, path, w.Code, want)
		}
	}

	// Two letter ids collapse into one series.
	do(http.MethodGet, "/api/v1/letters/a1", http.StatusOK)
	do(http.MethodGet, "/api/v1/letters/b2", http.StatusOK)
	do(http.MethodPost, "/interaction-guard", http.StatusTooManyRequests)
	do(http.MethodGet, "/health", http.StatusNoContent)
	// Distinct unknown URLs share the "unmatched" series.
	do(http.MethodGet, "/wp-login.php", http.StatusNotFound)
	do(http.MethodGet, "/.env", http.StatusNotFound)

	if got := testutil.ToFloat64(letter) - baseLetter; got != 2 {
		t.Fatalf("letter delta = %v; want 2", got)
	}
	if got := testutil.ToFloat64(guard) - baseGuard; got != 1 {
		t.Fatalf("guard delta = %v; want 1", got)
	}
	if got := testutil.ToFloat64(health) - baseHealth; got != 1 {
		t.Fatalf("health delta = %v; want 1", got)
	}
	if got := testutil.ToFloat64(unmatched) - baseUnmatched; got != 2 {
		t.Fatalf("unmatched delta = %v; want 2", got)
	}

	for _, s := range []string{SurfaceAPI, SurfaceGuard, SurfaceOps} {
		if v := testutil.ToFloat64(httpInflight.WithLabelValues(s)); v != 0 {
			t.Fatalf("inflight[%s] = %v; want 0", s, v)
		}
	}
}

func TestSurfaceOf(t *testing.T) {
	cases := map[string]string{
		"/interaction-guard":           SurfaceGuard,
		"/health":                      SurfaceOps,
		"/metrics":                     SurfaceOps,
		"/swagger/*any":                SurfaceOps,
		"/api/v1/letters":              SurfaceAPI,
		"/api/v1/capsules/:id":         SurfaceAPI,
		"unmatched":                    SurfaceAPI,
		"/interaction-guard/something": SurfaceAPI,
	}
	for route, want := range cases {
		if got := surfaceOf(route); got != want {
			t.Errorf("surfaceOf(%q) = %q; want %q", route, got, want)
		}
	}
}
