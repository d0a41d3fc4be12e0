package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHFProvider_Complete(t *testing.T) {
	var gotAuth string
	var gotReq hfChatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  majtsíva means to hug  "}},
			},
		})
	}))
	defer srv.Close()

	p := NewHFProvider("hf-key", "Qwen/Qwen3-1.7B", srv.URL, time.Second)
	text, err := p.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "tutor"},
		{Role: RoleUser, Content: "question"},
	}, Options{Temperature: 0.7, MaxTokens: 200})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if text != "majtsíva means to hug" {
		t.Errorf("Complete() = %q, want trimmed content", text)
	}
	if gotAuth != "Bearer hf-key" {
		t.Errorf("Authorization = %q, want Bearer hf-key", gotAuth)
	}
	if gotReq.Model != "Qwen/Qwen3-1.7B" || gotReq.MaxTokens != 200 {
		t.Errorf("request = %+v", gotReq)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestHFProvider_FailuresAreUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
			},
		},
		{
			name: "empty completion",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"choices": []map[string]any{
						{"message": map[string]any{"content": "   "}},
					},
				})
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			p := NewHFProvider("", "", srv.URL, time.Second)
			_, err := p.Complete(context.Background(), testMessages(), Options{})
			if err == nil {
				t.Fatal("Complete() error = nil, want unavailable")
			}
			if !errors.Is(err, ErrProviderUnavailable) {
				t.Errorf("error = %v, want ErrProviderUnavailable", err)
			}
		})
	}
}

func TestHFProvider_ConnectionRefused(t *testing.T) {
	p := NewHFProvider("", "", "http://127.0.0.1:1", 200*time.Millisecond)
	_, err := p.Complete(context.Background(), testMessages(), Options{})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("error = %v, want ErrProviderUnavailable", err)
	}
}
