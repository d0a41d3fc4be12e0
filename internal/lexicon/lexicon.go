// Package lexicon defines the domain model for the Bora/Spanish lexicon
// and the vector store contract the answer pipeline consumes.
package lexicon

import "context"

// Kind identifies the type of a retrieved lexicon unit.
type Kind string

const (
	// KindLemma is a canonical dictionary headword entry.
	KindLemma Kind = "lemma"

	// KindSubentry is a secondary sense or derived form under a headword.
	KindSubentry Kind = "subentry"

	// KindExample is an illustrative usage sentence pair.
	KindExample Kind = "example"
)

// SyntheticID marks hits injected by the exact-match booster rather than
// returned by the vector store.
const SyntheticID int64 = -1

// ExamplePair is one illustrative sentence with its translation.
type ExamplePair struct {
	SourceText string `json:"source_text"`
	TargetText string `json:"target_text"`
}

// Hit is one ranked retrieval result from the vector store.
type Hit struct {
	ID           int64        `json:"id"`
	Kind         Kind         `json:"kind"`
	Headword     string       `json:"headword"`
	PartOfSpeech string       `json:"part_of_speech,omitempty"`
	Gloss        string       `json:"gloss"`
	Category     string       `json:"category,omitempty"`
	Example      *ExamplePair `json:"example_pair,omitempty"`
	Similarity   float64      `json:"similarity"`
}

// Synthetic reports whether this hit was injected by the booster.
func (h Hit) Synthetic() bool {
	return h.ID == SyntheticID
}

// HeadwordRecord is a literal headword index entry.
type HeadwordRecord struct {
	ID           int64  `json:"id"`
	Headword     string `json:"headword"`
	PartOfSpeech string `json:"part_of_speech,omitempty"`
	Gloss        string `json:"gloss"`
	Category     string `json:"category,omitempty"`
}

// SearchParams constrains a similarity search.
type SearchParams struct {
	// Vector is the query embedding.
	Vector []float32

	// TopK caps the number of hits.
	TopK int

	// MinSimilarity filters hits below this score at the store layer.
	MinSimilarity float64

	// Kinds restricts results to the given kinds. Empty means all kinds.
	Kinds []Kind

	// Category restricts results to one lexicon category. Empty means all.
	Category string
}

// Store is the vector store contract consumed by the answer pipeline.
// Implementations rank results descending by similarity and apply the
// threshold and cap server-side.
type Store interface {
	// Search performs a similarity search.
	Search(ctx context.Context, params SearchParams) ([]Hit, error)

	// FindExact looks up text as a literal, case-sensitive headword.
	// Returns nil when the headword does not exist.
	FindExact(ctx context.Context, text string) (*HeadwordRecord, error)

	// ExamplesFor fetches up to limit example pairs for a headword.
	ExamplesFor(ctx context.Context, headwordID int64, limit int) ([]ExamplePair, error)
}
