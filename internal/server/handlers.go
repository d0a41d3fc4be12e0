package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/miappbora/bora-tutor/internal/lexicon"
	apperrors "github.com/miappbora/bora-tutor/internal/pkg/errors"
	"github.com/miappbora/bora-tutor/internal/rag"
)

// Answerer is the pipeline surface the handlers call.
type Answerer interface {
	Answer(ctx context.Context, req rag.Request) (*rag.Result, error)
	Retrieve(ctx context.Context, req rag.Request) ([]lexicon.Hit, error)
}

// Handler provides HTTP handlers for the tutoring API.
type Handler struct {
	pipeline Answerer
	store    lexicon.Store
}

// NewHandler creates a new API handler.
func NewHandler(pipeline Answerer, store lexicon.Store) *Handler {
	return &Handler{
		pipeline: pipeline,
		store:    store,
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HandleChat handles POST /v1/chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apperrors.WriteError(w, apperrors.New(apperrors.CodeInvalidRequest, "method not allowed"))
		return
	}

	var req rag.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.New(apperrors.CodeInvalidRequest, "invalid request body: "+err.Error()))
		return
	}

	result, err := h.pipeline.Answer(r.Context(), req)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// searchResponse is the JSON body for lexicon searches.
type searchResponse struct {
	Query   string        `json:"query"`
	Results []lexicon.Hit `json:"results"`
}

// HandleSearch handles GET /v1/lexicon/search?q=...&top_k=...
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apperrors.WriteError(w, apperrors.New(apperrors.CodeInvalidRequest, "method not allowed"))
		return
	}

	q := r.URL.Query()
	req := rag.Request{
		Query:    q.Get("q"),
		Category: q.Get("category"),
	}
	if v := q.Get("top_k"); v != "" {
		topK, err := strconv.Atoi(v)
		if err != nil || topK < 1 {
			apperrors.WriteError(w, apperrors.ValidationError("top_k must be a positive integer"))
			return
		}
		req.TopK = topK
	}
	if v := q.Get("min_similarity"); v != "" {
		minSim, err := strconv.ParseFloat(v, 64)
		if err != nil || minSim < 0 || minSim > 1 {
			apperrors.WriteError(w, apperrors.ValidationError("min_similarity must be between 0 and 1"))
			return
		}
		req.MinSimilarity = minSim
	}

	hits, err := h.pipeline.Retrieve(r.Context(), req)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:   req.Query,
		Results: hits,
	})
}

// lookupResponse is the JSON body for headword lookups.
type lookupResponse struct {
	Entry    *lexicon.HeadwordRecord `json:"entry"`
	Examples []lexicon.ExamplePair   `json:"examples"`
}

// HandleLookup handles GET /v1/lexicon/lookup?headword=...
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apperrors.WriteError(w, apperrors.New(apperrors.CodeInvalidRequest, "method not allowed"))
		return
	}

	headword := r.URL.Query().Get("headword")
	if headword == "" {
		apperrors.WriteError(w, apperrors.ValidationError("headword parameter is required"))
		return
	}

	record, err := h.store.FindExact(r.Context(), headword)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	if record == nil {
		apperrors.WriteError(w, apperrors.NotFoundError("headword"))
		return
	}

	examples, err := h.store.ExamplesFor(r.Context(), record.ID, 3)
	if err != nil {
		// Entry lookup succeeded; return it without examples.
		examples = nil
	}

	writeJSON(w, http.StatusOK, lookupResponse{
		Entry:    record,
		Examples: examples,
	})
}

// RegisterRoutes registers API routes on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/chat", h.HandleChat)
	mux.HandleFunc("/v1/lexicon/search", h.HandleSearch)
	mux.HandleFunc("/v1/lexicon/lookup", h.HandleLookup)
}
