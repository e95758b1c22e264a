package consult

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newTestRouter(client *fakeLLM, rec *memRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(newTestService(client, rec), zerolog.Nop()).RegisterRoutes(router)
	return router
}

func postAnalyze(router http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandlerAnalyze(t *testing.T) {
	router := newTestRouter(&fakeLLM{reply: "Condition: Flu\nUrgency: Low\nAdvice: Rest"}, &memRecorder{})

	w := postAnalyze(router, `{"fullname":"Jane","text":"fever","age":"30"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got["condition"] != "Flu" || got["urgency"] != "Low" || got["advice"] != "Rest" || len(got) != 3 {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestHandlerAnalyze_MissingFields(t *testing.T) {
	router := newTestRouter(&fakeLLM{}, &memRecorder{})

	w := postAnalyze(router, `{"fullname":"Jane"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	want := `{"condition":"Invalid","urgency":"Invalid","advice":"Missing age or symptoms."}`
	if w.Body.String() != want {
		t.Fatalf("expected %s, got %s", want, w.Body.String())
	}
}

func TestHandlerAnalyze_InvalidJSON(t *testing.T) {
	router := newTestRouter(&fakeLLM{}, &memRecorder{})

	w := postAnalyze(router, `{"text":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandlerAnalyze_RecordFailure(t *testing.T) {
	router := newTestRouter(&fakeLLM{reply: "Condition: Flu"}, &memRecorder{err: errors.New("locked")})

	w := postAnalyze(router, `{"text":"fever","age":"30"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "failed to record consultation") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
