package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"finitefield.org/vpnguide-web/internal/platform/requestctx"
)

func TestWriteErrorReadsIDsFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1\n")
	ctx = requestctx.WithTrace(ctx, requestctx.TraceInfo{TraceID: "4bf92f3577b34da6a3ce929d0e0e4736"})

	rec := httptest.NewRecorder()
	WriteError(ctx, rec, NewError("topic_not_found", "no page", http.StatusNotFound).
		WithDetails(map[string]any{"topic": "vpn-mars", "status": 200}))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["error"] != "topic_not_found" || payload["topic"] != "vpn-mars" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if payload["status"] != float64(http.StatusNotFound) {
		t.Fatalf("details must not override status, got %v", payload["status"])
	}
	if payload["request_id"] != "req-1" {
		t.Fatalf("expected sanitized request id, got %v", payload["request_id"])
	}
	if payload["trace_id"] != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("expected trace id, got %v", payload["trace_id"])
	}
}

func TestWriteErrorOmitsMissingIDs(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, NewError("internal", "boom", 0))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for zero status, got %d", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := payload["request_id"]; ok {
		t.Fatalf("unexpected request_id in %v", payload)
	}
	if _, ok := payload["trace_id"]; ok {
		t.Fatalf("unexpected trace_id in %v", payload)
	}
}
