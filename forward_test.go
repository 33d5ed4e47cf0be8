package skybrief

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
)

func TestHTTPFunctionsCallPostsArguments(t *testing.T) {
	var calls int32
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost || r.URL.Path != "/api/get_weather" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("expected json content type, got %q", got)
		}
		var args map[string]any
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
			t.Fatalf("decode args: %v", err)
		}
		if args["location"] != "Paris" {
			t.Fatalf("unexpected args %v", args)
		}
		_, _ = w.Write([]byte(`{"location":"Paris","temperature":15}`))
	}))
	defer server.Close()

	fns := NewHTTPFunctions(server.URL)
	out, err := fns.Call(context.Background(), "get_weather", map[string]any{"location": "Paris"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out != `{"location":"Paris","temperature":15}` {
		t.Fatalf("unexpected output %q", out)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 call, got %d", atomic.LoadInt32(&calls))
	}
}

func TestHTTPFunctionsCallReportsStatusErrors(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("location required"))
	}))
	defer server.Close()

	fns := NewHTTPFunctions(server.URL)
	if _, err := fns.Call(context.Background(), "get_weather", nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestHTTPFunctionsRegisterIntoRegistry(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/get_weather":
			_, _ = w.Write([]byte(`{"location":"Seattle"}`))
		case "/api/get_news_articles":
			_, _ = w.Write([]byte(`{"topic":"Sports"}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	registry := NewFunctionRegistry()
	NewHTTPFunctions(server.URL).Register(registry, "get_weather", "get_news_articles")

	fn, ok := registry.Resolve("get_news_articles")
	if !ok {
		t.Fatalf("expected get_news_articles registered")
	}
	out, err := fn(context.Background(), map[string]any{"topic": "sports"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out != `{"topic":"Sports"}` {
		t.Fatalf("unexpected output %q", out)
	}
}
