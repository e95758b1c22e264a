package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type fakeDB struct {
	err error
}

func (f fakeDB) Ping(ctx context.Context) error {
	return f.err
}

type panicRoutes struct{}

func (panicRoutes) RegisterRoutes(r gin.IRoutes) {
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
}

func newTestRouter(t *testing.T, db HealthChecker, registrars ...RouteRegistrar) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<html>symptom form</html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	return NewRouter(db, Options{StaticRoot: root, Logger: zerolog.Nop()}, registrars...)
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRouterHealthz(t *testing.T) {
	w := get(newTestRouter(t, fakeDB{}), "/healthz")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated request id header")
	}
}

func TestRouterReadyz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		w := get(newTestRouter(t, fakeDB{}), "/readyz")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"db":"ok"`) {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("degraded", func(t *testing.T) {
		w := get(newTestRouter(t, fakeDB{err: errors.New("database is locked")}), "/readyz")
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "database is locked") {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("disabled", func(t *testing.T) {
		w := get(newTestRouter(t, nil), "/readyz")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "disabled") {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestRouterServesForm(t *testing.T) {
	w := get(newTestRouter(t, fakeDB{}), "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "symptom form") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRouterKeepsInboundRequestID(t *testing.T) {
	router := newTestRouter(t, fakeDB{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected inbound request id, got %q", got)
	}
}

func TestRouterRecoversPanics(t *testing.T) {
	w := get(newTestRouter(t, fakeDB{}, panicRoutes{}), "/boom")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

// Ensure limitBodySize middleware allows small payloads and blocks large ones.
func TestLimitBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limitBodySize(10))
	router.POST("/echo", func(c *gin.Context) {
		_, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("12345"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("01234567890"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", w.Code)
		}
	})
}

func TestDetectStaticRoot(t *testing.T) {
	root := t.TempDir()
	web := filepath.Join(root, "web")
	sub := filepath.Join(root, "cmd", "server")
	if err := os.MkdirAll(web, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(web, "index.html"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(sub); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })

	got, err := filepath.EvalSymlinks(DetectStaticRoot())
	if err != nil {
		t.Fatalf("eval detected root: %v", err)
	}
	want, _ := filepath.EvalSymlinks(web)
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	if lvl := NewLogger("shouting", "json").GetLevel(); lvl != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %s", lvl)
	}
	if lvl := NewLogger("debug", "console").GetLevel(); lvl != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", lvl)
	}
}
