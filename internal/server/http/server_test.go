package httpserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cfgpkg "github.com/kittors/simple-message-service/internal/config"
	"github.com/kittors/simple-message-service/internal/message"
	"github.com/kittors/simple-message-service/internal/runtime"
	pebblestore "github.com/kittors/simple-message-service/internal/storage/pebble"
	logpkg "github.com/kittors/simple-message-service/pkg/log"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error,omitempty"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.DatabaseURL = ""
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever, Config: cfg})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text"})
	return New(rt, logger)
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd *strings.Reader
	if body != "" {
		rd = strings.NewReader(body)
	} else {
		rd = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	var env envelope
	if ct := w.Header().Get("Content-Type"); strings.Contains(ct, "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope from %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	w, env := do(t, s, http.MethodGet, "/api/healthz", "")
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status %d, envelope %+v", w.Code, env)
	}
}

func TestPushHandler(t *testing.T) {
	s := newTestServer(t)
	w, env := do(t, s, http.MethodPost, "/api/push", `{"key":"orders","message":"hello"}`)
	if w.Code != http.StatusCreated || !env.Success || env.Code != http.StatusCreated {
		t.Fatalf("status %d, envelope %+v", w.Code, env)
	}
	var m message.Message
	if err := json.Unmarshal(env.Data, &m); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if m.ID == 0 || m.Content != "hello" {
		t.Fatalf("stored message = %+v", m)
	}
}

func TestPushHandlerValidation(t *testing.T) {
	s := newTestServer(t)
	for _, body := range []string{
		`{"message":"no key"}`,
		`{"key":"orders"}`,
		`{"key":"orders","message":"   "}`,
		`not json`,
	} {
		w, env := do(t, s, http.MethodPost, "/api/push", body)
		if w.Code != http.StatusBadRequest || env.Success {
			t.Fatalf("body %q: status %d, envelope %+v", body, w.Code, env)
		}
	}
}

func TestPushHandlerMethod(t *testing.T) {
	s := newTestServer(t)
	w, _ := do(t, s, http.MethodGet, "/api/push", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", w.Code)
	}
}

func TestHistoryHandler(t *testing.T) {
	s := newTestServer(t)
	for _, msg := range []string{"one", "two", "three"} {
		if w, _ := do(t, s, http.MethodPost, "/api/push", `{"key":"orders","message":"`+msg+`"}`); w.Code != http.StatusCreated {
			t.Fatalf("push %q: status %d", msg, w.Code)
		}
	}

	w, env := do(t, s, http.MethodGet, "/api/history/orders?page=1&limit=2", "")
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status %d, envelope %+v", w.Code, env)
	}
	var page struct {
		Messages []message.Message `json:"messages"`
		Page     int               `json:"page"`
		Limit    int               `json:"limit"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(page.Messages) != 2 || page.Page != 1 || page.Limit != 2 {
		t.Fatalf("history page = %+v", page)
	}
	if page.Messages[0].Content != "three" || page.Messages[1].Content != "two" {
		t.Fatalf("expected newest first, got %+v", page.Messages)
	}

	// Other keys see nothing.
	_, env = do(t, s, http.MethodGet, "/api/history/other", "")
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(page.Messages) != 0 {
		t.Fatalf("foreign key sees %d messages", len(page.Messages))
	}
}

func TestDeleteHandler(t *testing.T) {
	s := newTestServer(t)
	_, env := do(t, s, http.MethodPost, "/api/push", `{"key":"orders","message":"doomed"}`)
	var m message.Message
	if err := json.Unmarshal(env.Data, &m); err != nil {
		t.Fatalf("decode message: %v", err)
	}

	body := new(bytes.Buffer)
	_ = json.NewEncoder(body).Encode(map[string]any{"ids": []uint64{m.ID}})
	w, env := do(t, s, http.MethodDelete, "/api/messages/orders", body.String())
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status %d, envelope %+v", w.Code, env)
	}
	var res struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode delete result: %v", err)
	}
	if res.DeletedCount != 1 {
		t.Fatalf("deletedCount = %d", res.DeletedCount)
	}

	// Deleting the same ids again matches nothing.
	w, _ = do(t, s, http.MethodDelete, "/api/messages/orders", body.String())
	if w.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status %d, want 404", w.Code)
	}

	// Empty id list is a client error.
	w, _ = do(t, s, http.MethodDelete, "/api/messages/orders", `{"ids":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty ids status %d, want 400", w.Code)
	}
}

func TestSubscribeBadFilter(t *testing.T) {
	s := newTestServer(t)
	w, _ := do(t, s, http.MethodGet, "/api/sse/orders?filter=content+%3D%3D%3D", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestSSERoundTrip(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/sse/orders")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type %q", ct)
	}

	rd := bufio.NewReader(resp.Body)
	readFrame := func() message.Frame {
		t.Helper()
		for {
			line, err := rd.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var f message.Frame
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &f); err != nil {
				t.Fatalf("decode frame %q: %v", line, err)
			}
			return f
		}
	}

	if f := readFrame(); f.Type != message.FrameSystem || f.Content != "Connection established" {
		t.Fatalf("handshake = %+v", f)
	}

	// The live push must arrive on the open stream.
	pushDone := make(chan error, 1)
	go func() {
		r, err := http.Post(ts.URL+"/api/push", "application/json",
			strings.NewReader(`{"key":"orders","message":"over the wire"}`))
		if err == nil {
			r.Body.Close()
		}
		pushDone <- err
	}()
	if f := readFrame(); f.Type != message.FrameMessage || f.Content != "over the wire" {
		t.Fatalf("live frame = %+v", f)
	}
	select {
	case err := <-pushDone:
		if err != nil {
			t.Fatalf("push: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("push did not complete")
	}
}

func TestSSEReplay(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.srv.Handler)
	defer ts.Close()

	r, err := http.Post(ts.URL+"/api/push", "application/json",
		strings.NewReader(`{"key":"orders","message":"the last word"}`))
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	r.Body.Close()

	resp, err := http.Get(ts.URL + "/api/sse/orders?replay=1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer resp.Body.Close()

	rd := bufio.NewReader(resp.Body)
	var frames []message.Frame
	for len(frames) < 2 {
		line, err := rd.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var f message.Frame
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &f); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		frames = append(frames, f)
	}
	if frames[0].Type != message.FrameSystem {
		t.Fatalf("first frame = %+v", frames[0])
	}
	if !frames[1].FromCache || frames[1].Content != "the last word" {
		t.Fatalf("replayed frame = %+v", frames[1])
	}
}

func TestUIServed(t *testing.T) {
	s := newTestServer(t)
	w, _ := do(t, s, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Simple Message Service") {
		t.Fatalf("unexpected root page")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	w, _ := do(t, s, http.MethodOptions, "/api/push", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}
