package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"base62num.local/gee"
)

func TestReqIDGeneratesAndEchoes(t *testing.T) {
	e := gee.New()
	e.Use(ReqID())
	var seen string
	e.GET("/x", func(ctx *gee.Context) {
		seen = ctx.Req.Header.Get(RequestIDHeader)
		ctx.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	got := w.Header().Get(RequestIDHeader)
	if len(got) != 32 {
		t.Fatalf("generated id: got %q, want 32 hex chars", got)
	}
	if seen != got {
		t.Fatalf("request header: got %q, want %q", seen, got)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	e.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "client-id" {
		t.Fatalf("echoed id: got %q, want %q", got, "client-id")
	}
}

func TestAccessLogWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	e := gee.New()
	e.Use(ReqID(), AccessLog())
	e.GET("/links/:code", func(ctx *gee.Context) { ctx.String(http.StatusTeapot, "short") })

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/links/B9", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["msg"] != "access" {
		t.Fatalf("msg: got %v", line["msg"])
	}
	if line["route"] != "/links/:code" || line["path"] != "/links/B9" {
		t.Fatalf("route/path: got %v / %v", line["route"], line["path"])
	}
	if line["status"] != float64(http.StatusTeapot) || line["bytes"] != float64(5) {
		t.Fatalf("status/bytes: got %v / %v", line["status"], line["bytes"])
	}
	if line["request_id"] == "" {
		t.Fatal("request_id missing")
	}
}
