package vision_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"larder/internal/config"
	"larder/internal/services"
	"larder/internal/services/vision"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *vision.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return vision.NewClient(config.Vision{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o",
	}, vision.WithHTTPClient(server.Client()))
}

func completionBody(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func TestAnalyzeSendsImagePart(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(completionBody("Recipe Name: Lasagna")))
	})

	text, err := client.Analyze(context.Background(), "https://cdn.example.net/recipes/1_a.jpg")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if text != "Recipe Name: Lasagna" {
		t.Fatalf("unexpected content %q", text)
	}

	encoded, _ := json.Marshal(captured)
	if !strings.Contains(string(encoded), "https://cdn.example.net/recipes/1_a.jpg") {
		t.Fatalf("request does not carry the photo url: %s", encoded)
	}
	if !strings.Contains(string(encoded), "image_url") {
		t.Fatalf("request has no image part: %s", encoded)
	}
}

func TestAnalyzeClassifiesAuthFailureAsConfiguration(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	})

	_, err := client.Analyze(context.Background(), "https://example.net/a.jpg")
	if !services.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestAnalyzeReportsServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := client.Analyze(context.Background(), "https://example.net/a.jpg")
	if err == nil || !strings.Contains(err.Error(), "http 502") {
		t.Fatalf("expected http 502 error, got %v", err)
	}
}

func TestAnalyzeRejectsEmptyContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("")))
	})

	_, err := client.Analyze(context.Background(), "https://example.net/a.jpg")
	if err == nil || !strings.Contains(err.Error(), "empty completion content") {
		t.Fatalf("expected empty content error, got %v", err)
	}
}

func TestAnalyzeRequiresAPIKey(t *testing.T) {
	client := vision.NewClient(config.Vision{Model: "gpt-4o"})
	_, err := client.Analyze(context.Background(), "https://example.net/a.jpg")
	if !services.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("OK")))
	})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health check: %v", err)
	}
}
