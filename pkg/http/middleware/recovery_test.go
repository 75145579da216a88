package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"MonteSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

func TestRecoverReturns500AndLogsPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := logger.New(&logger.Config{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	e := echo.New()
	e.Use(Recover(l))
	e.GET("/boom", func(echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, `"panic":"boom"`) || !strings.Contains(out, `"route":"/boom"`) {
		t.Fatalf("expected panic value and route in log, got %s", out)
	}
}
