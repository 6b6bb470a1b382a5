package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerComponentAndContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentTx, Format: "json", Output: &buf})

	ctx := WithUser(IntoContext(context.Background(), logger), 7)
	FromContext(ctx).InfoContext(ctx, "created", FieldCount, 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json log line %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != ComponentTx || rec[FieldUserID] != float64(7) || rec[FieldCount] != float64(3) {
		t.Errorf("unexpected record %v", rec)
	}

	if got := FromContext(context.Background()).Component(); got != "unknown" {
		t.Errorf("FromContext(empty).Component() = %q", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf})

	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "handled")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec[FieldRequestID] != "req_1" {
		t.Errorf("request id = %v", rec[FieldRequestID])
	}
}

func TestWithComponent_SingleAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf}).With(FieldRequestID, "req_9").WithComponent(ComponentTrace)
	logger.Info("done")

	line := buf.String()
	if n := strings.Count(line, FieldComponent+"="); n != 1 {
		t.Errorf("component attribute appears %d times: %s", n, line)
	}
	if !strings.Contains(line, "component=trace") || !strings.Contains(line, "request_id=req_9") {
		t.Errorf("unexpected line: %s", line)
	}
	if logger.Component() != ComponentTrace {
		t.Errorf("Component() = %q", logger.Component())
	}
}
