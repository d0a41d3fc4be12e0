package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHFRouterURL = "https://router.huggingface.co/v1"

// HFProvider completes chat messages via the HuggingFace router, which
// exposes an OpenAI-compatible chat completions endpoint.
type HFProvider struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

// NewHFProvider creates a HuggingFace chat provider.
func NewHFProvider(apiKey, model, baseURL string, timeout time.Duration) *HFProvider {
	if model == "" {
		model = "Qwen/Qwen3-1.7B"
	}
	if baseURL == "" {
		baseURL = defaultHFRouterURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HFProvider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
	}
}

// Name identifies the provider family.
func (*HFProvider) Name() string {
	return "huggingface"
}

type hfChatRequest struct {
	Model       string      `json:"model"`
	Messages    []hfMessage `json:"messages"`
	Temperature float64     `json:"temperature"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

type hfMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type hfChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete generates text for the messages.
func (h *HFProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	reqBody := hfChatRequest{
		Model:       h.model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, hfMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", ErrProviderUnavailable, err)
	}

	url := h.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: huggingface: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: huggingface returned %d: %s", ErrProviderUnavailable, resp.StatusCode, payload)
	}

	var chatResp hfChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrProviderUnavailable, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: huggingface returned no choices", ErrProviderUnavailable)
	}

	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: huggingface returned an empty completion", ErrProviderUnavailable)
	}

	return text, nil
}
