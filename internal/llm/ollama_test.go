package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_LocalServer(t *testing.T) {
	var (
		gotPath string
		gotBody map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletionBody("Great answer!"))
	}))
	t.Cleanup(server.Close)

	p, err := NewOllamaProvider(OllamaConfig{BaseURL: server.URL + "/v1", Model: "llama3.1:8b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := p.Generate(context.Background(), Request{
		System:   "You are a supportive and knowledgeable tutor.",
		Messages: UserPrompt("feedback please"),
		Schema:   &Schema{Name: "x", Definition: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "Great answer!" {
		t.Fatalf("text = %q", resp.Text)
	}
	if gotPath != "/v1/chat/completions" {
		t.Fatalf("path = %q, want /v1/chat/completions", gotPath)
	}
	if gotBody["model"] != "llama3.1:8b" {
		t.Fatalf("model = %v", gotBody["model"])
	}
	// Local servers get plain JSON mode instead of strict json_schema.
	rf, _ := gotBody["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Fatalf("response_format.type = %v, want json_object", rf["type"])
	}
}

func TestNewOllamaProvider_DefaultBaseURL(t *testing.T) {
	p, err := NewOllamaProvider(OllamaConfig{Model: "mistral"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mistral" {
		t.Fatalf("model = %q, want mistral", p.ModelID())
	}
	if p.name != ProviderOllama {
		t.Fatalf("name = %q, want %q", p.name, ProviderOllama)
	}
}
