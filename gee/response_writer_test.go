package gee

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriterTracksStatusAndSize(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	if rw.Status() != http.StatusOK || rw.Written() {
		t.Fatalf("initial: status %d written %v", rw.Status(), rw.Written())
	}

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)
	rw.Write([]byte("hello"))
	rw.Write([]byte(" world"))

	if rw.Status() != http.StatusCreated || rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d/%d, want 201", rw.Status(), rec.Code)
	}
	if rw.Size() != 11 {
		t.Fatalf("size: got %d, want 11", rw.Size())
	}
}

func TestResponseWriterImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)
	rw.Write([]byte("x"))
	if !rw.Written() || rec.Code != http.StatusOK {
		t.Fatalf("written %v code %d", rw.Written(), rec.Code)
	}
}

func TestResponseWriterUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)
	if rw.Unwrap() != http.ResponseWriter(rec) {
		t.Fatal("Unwrap should return the underlying writer")
	}
}
