package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultHFBaseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction"

// HuggingFace generates embeddings via the HuggingFace Inference API
// feature-extraction pipeline.
type HuggingFace struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	dimension  int
}

// NewHuggingFace creates a HuggingFace embedder.
func NewHuggingFace(cfg Config) *HuggingFace {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultHFBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	dimension := cfg.Dimension
	if dimension == 0 {
		dimension = 384
	}

	return &HuggingFace{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		model:      model,
		apiKey:     cfg.APIKey,
		dimension:  dimension,
	}
}

type hfEmbedRequest struct {
	Inputs []string `json:"inputs"`
}

// Embed generates an embedding for one text.
func (h *HuggingFace) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	body, err := json.Marshal(hfEmbedRequest{Inputs: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshaling embed request: %w", err)
	}

	url := h.baseURL + "/" + h.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface embedding call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("huggingface embedding returned %d: %s", resp.StatusCode, payload)
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}

	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("huggingface returned an empty embedding")
	}

	return vectors[0], nil
}

// Dimension returns the vector length this embedder produces.
func (h *HuggingFace) Dimension() int {
	return h.dimension
}
