package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/embedefy-bridge/internal/config"
	"github.com/samvad-hq/embedefy-bridge/pkg/embedefy"
)

func embeddingsServer(t *testing.T, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(endpoint, storageType string) *config.Config {
	return &config.Config{
		EmbeddingsEndpoint:     endpoint,
		AccessToken:            "secret",
		RequestTimeout:         5 * time.Second,
		StorageType:            storageType,
		MemoryCacheSize:        16,
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}
}

func TestBridgeEmbedCachesResults(t *testing.T) {
	var hits int32
	srv := embeddingsServer(t, `{"inputs":[{"data":[0.1, 0.2]}]}`, &hits)

	bridge, err := NewBridge(testConfig(srv.URL, "memory"), nil)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	defer bridge.Close()

	for i := 0; i < 2; i++ {
		data, err := bridge.Embed(context.Background(), "sentence-t5-large", "hello")
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		if data != "[0.1,0.2]" {
			t.Fatalf("data = %q", data)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected 1 API call with cache, got %d", n)
	}
}

func TestBridgeWithoutCacheCallsEveryTime(t *testing.T) {
	var hits int32
	srv := embeddingsServer(t, `{"inputs":[{"data":[1]}]}`, &hits)

	bridge, err := NewBridge(testConfig(srv.URL, "none"), nil)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	defer bridge.Close()

	for i := 0; i < 2; i++ {
		if _, err := bridge.Embed(context.Background(), "m", "x"); err != nil {
			t.Fatalf("Embed: %v", err)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("expected 2 API calls, got %d", n)
	}
}

func TestBridgeDoesNotCacheErrors(t *testing.T) {
	var hits int32
	srv := embeddingsServer(t, `{"error":"invalid_model","message":"unknown model"}`, &hits)

	bridge, err := NewBridge(testConfig(srv.URL, "memory"), nil)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	defer bridge.Close()

	for i := 0; i < 2; i++ {
		_, err := bridge.Embed(context.Background(), "nope", "x")
		var apiErr *embedefy.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Error() != "Embedefy API error: invalid_model: unknown model" {
			t.Fatalf("message = %q", apiErr.Error())
		}
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("errors must not be cached, got %d calls", n)
	}
}

func TestNewBridgeRejectsBadStorage(t *testing.T) {
	if _, err := NewBridge(testConfig("http://127.0.0.1", "redis"), nil); err == nil {
		t.Fatalf("expected storage error")
	}
	if _, err := NewBridge(nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
