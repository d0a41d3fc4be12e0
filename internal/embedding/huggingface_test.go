package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHuggingFace_Embed(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq hfEmbedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)

		json.NewEncoder(w).Encode([][]float32{{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	e := NewHuggingFace(Config{
		Model:     "sentence-transformers/all-MiniLM-L6-v2",
		Dimension: 3,
		APIKey:    "hf-key",
		BaseURL:   srv.URL,
		Timeout:   time.Second,
	})

	vector, err := e.Embed(context.Background(), "abrazar")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(vector) != 3 || vector[0] != 0.1 {
		t.Errorf("Embed() = %v, want [0.1 0.2 0.3]", vector)
	}
	if gotPath != "/sentence-transformers/all-MiniLM-L6-v2" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer hf-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(gotReq.Inputs) != 1 || gotReq.Inputs[0] != "abrazar" {
		t.Errorf("request inputs = %v", gotReq.Inputs)
	}
}

func TestHuggingFace_EmbedErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "provider error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model loading", http.StatusServiceUnavailable)
			},
		},
		{
			name: "empty response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode([][]float32{})
			},
		},
		{
			name: "malformed response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":"bad"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			e := NewHuggingFace(Config{BaseURL: srv.URL, Timeout: time.Second})
			if _, err := e.Embed(context.Background(), "abrazar"); err == nil {
				t.Error("Embed() error = nil, want failure")
			}
		})
	}
}

func TestHuggingFace_EmptyTextRejected(t *testing.T) {
	e := NewHuggingFace(Config{Timeout: time.Second})
	if _, err := e.Embed(context.Background(), ""); err == nil {
		t.Error("Embed(\"\") error = nil, want failure")
	}
}

func TestHuggingFace_Defaults(t *testing.T) {
	e := NewHuggingFace(Config{})
	if e.Dimension() != 384 {
		t.Errorf("Dimension() = %d, want 384", e.Dimension())
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	if _, ok := New(Config{Provider: "huggingface"}).(*HuggingFace); !ok {
		t.Error("New(huggingface) did not return *HuggingFace")
	}
	if _, ok := New(Config{Provider: "openai"}).(*OpenAI); !ok {
		t.Error("New(openai) did not return *OpenAI")
	}
}
