package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerRecordsRequestOutcome(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	body := "short and stout"
	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(body))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry struct {
		Method string `json:"method"`
		Path   string `json:"path"`
		Client string `json:"client"`
		Status int    `json:"status"`
		Bytes  int    `json:"bytes"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line not JSON: %v (%s)", err, buf.Bytes())
	}

	if entry.Method != http.MethodGet || entry.Path != "/api/sessions" {
		t.Fatalf("unexpected request fields: %+v", entry)
	}
	if entry.Client != "203.0.113.9" {
		t.Fatalf("client %q, want the forwarded address the limiter keys on", entry.Client)
	}
	if entry.Status != http.StatusTeapot {
		t.Fatalf("status %d, want %d", entry.Status, http.StatusTeapot)
	}
	if entry.Bytes != len(body) {
		t.Fatalf("bytes %d, want %d", entry.Bytes, len(body))
	}
}
