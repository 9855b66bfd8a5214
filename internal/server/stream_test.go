package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type staticFrames struct {
	mu   sync.Mutex
	seq  uint64
	jpeg []byte
}

func (f *staticFrames) LatestJPEG() (uint64, []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seq, f.jpeg
}

func TestStreamHandler(t *testing.T) {
	frames := &staticFrames{seq: 1, jpeg: []byte("fake-jpeg")}
	handler := NewStreamHandler(frames, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if n := strings.Count(body, "--frame"); n != 1 {
		t.Errorf("wrote %d frames for one sequence number, want 1", n)
	}
	if !strings.Contains(body, "Content-Length: 9") || !strings.Contains(body, "fake-jpeg") {
		t.Errorf("unexpected body %q", body)
	}
}

func TestStreamHandler_NoFrames(t *testing.T) {
	handler := NewStreamHandler(&staticFrames{}, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	handler := NewStreamHandler(&staticFrames{}, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/stream", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
