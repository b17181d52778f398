package openrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newModelsServer(t *testing.T, known string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/api/v1/models/"+known {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"model not found"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + known + `","object":"model","created":1,"owned_by":"openrouter"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifyModel(t *testing.T) {
	t.Parallel()

	srv := newModelsServer(t, "gpt-4o-mini")
	cfg := Config{BaseURL: srv.URL + "/api/v1", APIKey: "test-key", Model: "gpt-4o-mini"}
	if err := VerifyModel(context.Background(), cfg); err != nil {
		t.Fatalf("VerifyModel() error = %v", err)
	}

	cfg.Model = "gpt-does-not-exist"
	if err := VerifyModel(context.Background(), cfg); err == nil {
		t.Fatal("VerifyModel() error = nil, want unknown model error")
	}
}

func TestVerifyModelRequiresKey(t *testing.T) {
	t.Parallel()

	if err := VerifyModel(context.Background(), Config{Model: "x"}); err == nil {
		t.Fatal("VerifyModel() error = nil, want missing key error")
	}
	if NewClient(Config{}) != nil {
		t.Fatal("NewClient() without key should return nil")
	}
}

func TestNewChatModel(t *testing.T) {
	t.Parallel()

	maxTokens := 256
	cfg := Config{BaseURL: "https://openrouter.ai/api/v1/", APIKey: "k", Model: "x-ai/grok-4.1-fast", MaxCompletionToken: &maxTokens}
	m, err := cfg.New(context.Background())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if m == nil {
		t.Fatal("New() returned nil model")
	}
}
