package skybrief

import (
	"net/http"
	"testing"
	"time"
)

func TestAPIErrorFromResponseTypes(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusBadRequest, func(err error) bool { _, ok := err.(*BadRequestError); return ok }},
		{http.StatusUnauthorized, func(err error) bool { _, ok := err.(*AuthenticationError); return ok }},
		{http.StatusForbidden, func(err error) bool { _, ok := err.(*ForbiddenError); return ok }},
		{http.StatusNotFound, func(err error) bool { _, ok := err.(*NotFoundError); return ok }},
		{http.StatusTooManyRequests, func(err error) bool { _, ok := err.(*RateLimitError); return ok }},
		{http.StatusInternalServerError, func(err error) bool { _, ok := err.(*ServerError); return ok }},
		{http.StatusBadGateway, func(err error) bool { _, ok := err.(*ServerError); return ok }},
		{http.StatusTeapot, func(err error) bool { _, ok := err.(*APIError); return ok }},
	}

	for _, tt := range tests {
		err := apiErrorFromResponse(tt.status, []byte(`{"detail":"boom"}`), http.Header{}, defaultRequestIDHeader)
		if !tt.check(err) {
			t.Fatalf("status %d produced wrong type: %T", tt.status, err)
		}
	}
}

func TestAPIErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"Detail", `{"detail":"missing field"}`, "missing field"},
		{"Message", `{"message":"rate limited"}`, "rate limited"},
		{"ErrorString", `{"error":"bad input"}`, "bad input"},
		{"NestedError", `{"error":{"code":"server_error","message":"model unavailable"}}`, "model unavailable"},
		{"PlainText", `upstream exploded`, "upstream exploded"},
		{"Empty", ``, "HTTP 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, _ := extractErrorDetail(500, []byte(tt.body))
			if msg != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, msg)
			}
		})
	}
}

func TestAPIErrorIncludesRequestID(t *testing.T) {
	headers := http.Header{}
	headers.Set(defaultRequestIDHeader, "sb-abc123")

	err := apiErrorFromResponse(http.StatusNotFound, nil, headers, defaultRequestIDHeader)
	nf, ok := err.(*NotFoundError)
	if !ok {
		t.Fatalf("expected NotFoundError, got %T", err)
	}
	if nf.RequestID != "sb-abc123" {
		t.Fatalf("expected request id captured, got %q", nf.RequestID)
	}
	if got := nf.Error(); got != "skybrief api error (404): HTTP 404 (request_id=sb-abc123)" {
		t.Fatalf("unexpected error string: %q", got)
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	headers := http.Header{}
	headers.Set("Retry-After", "3")

	d := parseRetryAfter(headers)
	if d == nil || *d != 3*time.Second {
		t.Fatalf("expected 3s, got %v", d)
	}
}

func TestParseRetryAfterMissing(t *testing.T) {
	if d := parseRetryAfter(http.Header{}); d != nil {
		t.Fatalf("expected nil, got %v", d)
	}
}

func TestRateLimitErrorCarriesRetryAfter(t *testing.T) {
	headers := http.Header{}
	headers.Set("Retry-After", "2")

	err := apiErrorFromResponse(http.StatusTooManyRequests, nil, headers, defaultRequestIDHeader)
	rl, ok := err.(*RateLimitError)
	if !ok {
		t.Fatalf("expected RateLimitError, got %T", err)
	}
	if rl.RetryAfter == nil || *rl.RetryAfter != 2*time.Second {
		t.Fatalf("expected retry-after 2s, got %v", rl.RetryAfter)
	}
}
