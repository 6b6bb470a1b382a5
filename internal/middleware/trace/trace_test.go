package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "fintrack/internal/log"
)

func TestMiddleware_RequestID(t *testing.T) {
	var buf bytes.Buffer
	m := NewMiddleware(applog.New(applog.Config{Output: &buf}), nil)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	if !strings.HasPrefix(seen, "req_") || rec.Header().Get(HeaderRequestID) != seen {
		t.Fatalf("request id = %q, header = %q", seen, rec.Header().Get(HeaderRequestID))
	}
	var completed string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "HTTP request completed") {
			completed = line
		}
	}
	if !strings.Contains(completed, applog.FieldRequestID+"="+seen) {
		t.Errorf("completion line lacks request id %q: %q", seen, completed)
	}
	if n := strings.Count(completed, applog.FieldComponent+"="); n != 1 {
		t.Errorf("completion line has %d component attributes: %q", n, completed)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "client-abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "client-abc" {
		t.Errorf("caller id not reused: %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "bad id with spaces")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "bad id with spaces" {
		t.Error("malformed caller id accepted")
	}

	if got := m.GetMetrics(); got.TotalRequests != 3 || got.ServerErrors != 3 {
		t.Errorf("metrics = %+v", got)
	}
}
