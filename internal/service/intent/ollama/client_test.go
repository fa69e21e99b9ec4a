package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		if req.Model != "deepseek-r1:latest" || req.Stream || len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   req.Model,
			"message": map[string]string{"role": "assistant", "content": "  {\"action\":\"unknown\"}\n"},
			"done":    true,
		})
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/chat", "deepseek-r1:latest", time.Second)
	got, err := c.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"action":"unknown"}` {
		t.Errorf("got %q", got)
	}
}

func TestCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := New(srv.URL+"/api/chat", "m", time.Second).Complete(context.Background(), "hi"); err == nil {
		t.Fatal("expected error on 404")
	}
}

func TestCompleteMissingMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"done":true}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL+"/api/chat", "m", time.Second).Complete(context.Background(), "hi")
	if err != nil || got != "" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestReady(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	if err := New(srv.URL+"/api/chat", "m", time.Second).Ready(context.Background()); err != nil {
		t.Fatal(err)
	}
	if path != "/api/tags" {
		t.Errorf("probed %q", path)
	}
}

func TestTagsEndpoint(t *testing.T) {
	if got := TagsEndpoint("http://h:11434/api/chat"); got != "http://h:11434/api/tags" {
		t.Errorf("got %q", got)
	}
	if got := TagsEndpoint("http://h/custom"); got != "http://h/custom" {
		t.Errorf("got %q", got)
	}
}
