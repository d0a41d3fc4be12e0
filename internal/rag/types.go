// Package rag implements the retrieval-augmented answer pipeline for
// lexicon questions: embed the query, retrieve and group lexicon hits,
// assemble a context block, generate an answer with provider fallback,
// and cache the full result.
package rag

import (
	"github.com/miappbora/bora-tutor/internal/lexicon"
	"github.com/miappbora/bora-tutor/internal/llm"
)

// Request carries one tutoring question and its retrieval parameters.
type Request struct {
	// Query is the raw question text.
	Query string `json:"query"`

	// TopK caps the number of retrieved hits. Zero means the configured
	// default.
	TopK int `json:"top_k,omitempty"`

	// MinSimilarity filters hits below this score. Zero means the
	// configured default.
	MinSimilarity float64 `json:"min_similarity,omitempty"`

	// Category restricts retrieval to one lexicon category.
	Category string `json:"category,omitempty"`

	// History is the recent conversation, oldest first.
	History []llm.Message `json:"history,omitempty"`

	// Fast trades answer richness for latency: example enrichment is
	// skipped and generation budgets shrink.
	Fast bool `json:"fast,omitempty"`
}

// Result is the full pipeline output.
type Result struct {
	// Answer is the generated (or fallback) answer text. Never empty.
	Answer string `json:"answer"`

	// Results are the retrieved hits backing the answer, ranked
	// descending by similarity.
	Results []lexicon.Hit `json:"results"`

	// Timings holds per-stage wall-clock durations in milliseconds.
	Timings map[string]float64 `json:"timings"`

	// Counters holds per-request event counts.
	Counters map[string]int `json:"counters"`
}

// Group clusters hits that share a headword for context rendering.
type Group struct {
	Headword       string
	PartOfSpeech   string
	Gloss          string
	BestSimilarity float64
	Examples       []lexicon.ExamplePair
	Hits           []lexicon.Hit
}
