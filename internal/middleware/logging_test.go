package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecureLogger_RedactsSensitiveQuery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := SecureLogger(logger, "production")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest("GET", "/users/search?email=mario%40example.com&page=2", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if got := rec["path"]; got != "/users/search?email=%5BREDACTED%5D&page=2" {
		t.Errorf("path = %v, want redacted email", got)
	}
	if got := rec["status"]; got != float64(http.StatusNotFound) {
		t.Errorf("status = %v, want 404", got)
	}
	if got := rec["remote_addr"]; got != "[REDACTED]" {
		t.Errorf("remote_addr = %v, want [REDACTED] in production", got)
	}
}

func TestSecureLogger_ServerErrorsLogAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := SecureLogger(logger, "development")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", rec["level"])
	}
	if rec["path"] != "/health" {
		t.Errorf("path = %v, want /health", rec["path"])
	}
}
