package skybrief

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(baseURL string) Config {
	return Config{
		APIKey:          "k",
		ProjectEndpoint: baseURL,
		Timeout:         2 * time.Second,
		MaxRetries:      0,
	}
}

func TestHTTPClientSetsAuthAndRequestID(t *testing.T) {
	var calls int32
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Fatalf("expected auth header, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Fatalf("expected user agent %q, got %q", userAgent, got)
		}
		if got := r.Header.Get(defaultRequestIDHeader); !strings.HasPrefix(got, "sb-") {
			t.Fatalf("expected generated request id, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RequestIDHeader = defaultRequestIDHeader
	cfg.AutoRequestID = true
	hc := newHTTPClient(cfg, newAuth(cfg))
	defer hc.close()

	var out map[string]any
	if err := hc.getWithContext(context.Background(), "/v1/agents/", nil, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 call, got %d", atomic.LoadInt32(&calls))
	}
}

func TestHTTPClientStripsAccidentalBearerPrefix(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Fatalf("expected normalized auth header, got %q", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.APIKey = "Bearer k"
	hc := newHTTPClient(cfg, newAuth(cfg))
	defer hc.close()

	if err := hc.getWithContext(context.Background(), "/v1/agents/", nil, nil); err != nil {
		t.Fatalf("get: %v", err)
	}
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls int32
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 3
	cfg.RetryInitialInterval = time.Millisecond
	cfg.RetryMaxInterval = 2 * time.Millisecond
	hc := newHTTPClient(cfg, newAuth(cfg))
	defer hc.close()

	if err := hc.getWithContext(context.Background(), "/v1/agents/", nil, nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", atomic.LoadInt32(&calls))
	}
}

func TestHTTPClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"nope"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 3
	cfg.RetryInitialInterval = time.Millisecond
	hc := newHTTPClient(cfg, newAuth(cfg))
	defer hc.close()

	err := hc.getWithContext(context.Background(), "/v1/agents/", nil, nil)
	if _, ok := err.(*BadRequestError); !ok {
		t.Fatalf("expected BadRequestError, got %T %v", err, err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 call, got %d", atomic.LoadInt32(&calls))
	}
}

func TestHTTPClientHonorsRetryAfter(t *testing.T) {
	var calls int32
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 1
	cfg.RetryInitialInterval = time.Millisecond
	hc := newHTTPClient(cfg, newAuth(cfg))
	defer hc.close()

	if err := hc.getWithContext(context.Background(), "/v1/agents/", nil, nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", atomic.LoadInt32(&calls))
	}
}

func TestHTTPClientCancelledContextStopsRetries(t *testing.T) {
	var calls int32
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 10
	cfg.RetryInitialInterval = 50 * time.Millisecond
	hc := newHTTPClient(cfg, newAuth(cfg))
	defer hc.close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := hc.getWithContext(ctx, "/v1/agents/", nil, nil); err == nil {
		t.Fatalf("expected error")
	}
	if got := atomic.LoadInt32(&calls); got > 2 {
		t.Fatalf("expected retries to stop on cancellation, got %d calls", got)
	}
}

func TestHTTPClientRunsHooks(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Hooked"); got != "yes" {
			t.Fatalf("expected hook header, got %q", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var sawResponse int32
	cfg := testConfig(server.URL)
	cfg.BeforeRequest = []RequestHook{func(req *http.Request) {
		req.Header.Set("X-Hooked", "yes")
	}}
	cfg.AfterResponse = []ResponseHook{func(resp *http.Response, body []byte) {
		atomic.AddInt32(&sawResponse, 1)
	}}
	hc := newHTTPClient(cfg, newAuth(cfg))
	defer hc.close()

	if err := hc.getWithContext(context.Background(), "/v1/agents/", nil, nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if atomic.LoadInt32(&sawResponse) != 1 {
		t.Fatalf("expected response hook to run once")
	}
}

func TestHTTPClientHookPanicIsRecovered(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.BeforeRequest = []RequestHook{func(req *http.Request) {
		panic("hook exploded")
	}}
	hc := newHTTPClient(cfg, newAuth(cfg))
	defer hc.close()

	if err := hc.getWithContext(context.Background(), "/v1/agents/", nil, nil); err != nil {
		t.Fatalf("get: %v", err)
	}
}

func TestBuildURLJoinsAndEncodesQuery(t *testing.T) {
	cfg := testConfig("https://agents.example.com/")
	hc := newHTTPClient(cfg, newAuth(cfg))
	defer hc.close()

	got, err := hc.buildURL("v1/agents/", map[string]string{"page": "2", "q": "a b"})
	if err != nil {
		t.Fatalf("build url: %v", err)
	}
	if !strings.HasPrefix(got, "https://agents.example.com/v1/agents/?") {
		t.Fatalf("unexpected url %q", got)
	}
	if !strings.Contains(got, "page=2") || !strings.Contains(got, "q=a+b") {
		t.Fatalf("query not encoded: %q", got)
	}
}

func TestPostDocumentSendsMultipart(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("index"); got != "kb" {
			t.Fatalf("expected index field, got %q", got)
		}
		file, header, err := r.FormFile("document")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "notes.md" {
			t.Fatalf("expected filename notes.md, got %q", header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"document_id":"d1","filename":"notes.md","status":"ingested"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	hc := newHTTPClient(cfg, newAuth(cfg))
	defer hc.close()

	doc := DocumentUpload{Reader: strings.NewReader("# notes"), Filename: "notes.md"}
	var out DocumentIngestResult
	err := hc.postDocumentWithContext(context.Background(), "/v1/search/indexes/kb/documents/", doc, map[string]string{"index": "kb"}, &out)
	if err != nil {
		t.Fatalf("post document: %v", err)
	}
	if out.DocumentID != "d1" {
		t.Fatalf("expected document id d1, got %q", out.DocumentID)
	}
}
