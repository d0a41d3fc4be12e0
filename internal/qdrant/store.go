package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/miappbora/bora-tutor/internal/lexicon"
)

// Payload field names in the lexicon collection.
const (
	fieldEntryID      = "entry_id"
	fieldKind         = "kind"
	fieldHeadword     = "headword"
	fieldHeadwordID   = "headword_id"
	fieldPartOfSpeech = "part_of_speech"
	fieldGloss        = "gloss"
	fieldCategory     = "category"
	fieldSourceText   = "source_text"
	fieldTargetText   = "target_text"
)

// Search performs a dense similarity search with the threshold and cap
// applied at the store layer, so results come back filtered and ranked.
func (c *Client) Search(ctx context.Context, params lexicon.SearchParams) ([]lexicon.Hit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("client is closed")
	}

	if len(params.Vector) == 0 {
		return nil, fmt.Errorf("query vector is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	limit := uint64(params.TopK)
	if limit == 0 {
		limit = 10
	}

	queryPoints := &qdrant.QueryPoints{
		CollectionName: c.config.Collection,
		Query:          qdrant.NewQueryDense(params.Vector),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	}

	if params.MinSimilarity > 0 {
		queryPoints.ScoreThreshold = qdrant.PtrOf(float32(params.MinSimilarity))
	}

	if filter := buildSearchFilter(params); filter != nil {
		queryPoints.Filter = filter
	}

	points, err := c.client.Query(ctx, queryPoints)
	if err != nil {
		return nil, fmt.Errorf("lexicon search failed: %w", err)
	}

	hits := make([]lexicon.Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, scoredPointToHit(p))
	}

	return hits, nil
}

// FindExact looks up text as a literal, case-sensitive headword.
func (c *Client) FindExact(ctx context.Context, text string) (*lexicon.HeadwordRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("client is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			keywordCondition(fieldHeadword, text),
			keywordCondition(fieldKind, string(lexicon.KindLemma)),
		},
	}

	points, err := c.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: c.config.Collection,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("exact headword lookup failed: %w", err)
	}

	if len(points) == 0 {
		return nil, nil
	}

	payload := points[0].Payload
	return &lexicon.HeadwordRecord{
		ID:           int64(getIntValue(payload, fieldEntryID)),
		Headword:     getStringValue(payload, fieldHeadword),
		PartOfSpeech: getStringValue(payload, fieldPartOfSpeech),
		Gloss:        getStringValue(payload, fieldGloss),
		Category:     getStringValue(payload, fieldCategory),
	}, nil
}

// ExamplesFor fetches up to limit example pairs for a headword.
func (c *Client) ExamplesFor(ctx context.Context, headwordID int64, limit int) ([]lexicon.ExamplePair, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("client is closed")
	}

	if limit <= 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			integerCondition(fieldHeadwordID, headwordID),
			keywordCondition(fieldKind, string(lexicon.KindExample)),
		},
	}

	points, err := c.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: c.config.Collection,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(limit)), // #nosec G115 -- limit validated above
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("example fetch failed: %w", err)
	}

	pairs := make([]lexicon.ExamplePair, 0, len(points))
	for _, p := range points {
		pairs = append(pairs, lexicon.ExamplePair{
			SourceText: getStringValue(p.Payload, fieldSourceText),
			TargetText: getStringValue(p.Payload, fieldTargetText),
		})
	}

	return pairs, nil
}

// buildSearchFilter builds a Qdrant filter from search params.
func buildSearchFilter(params lexicon.SearchParams) *qdrant.Filter {
	var conditions []*qdrant.Condition

	if len(params.Kinds) > 0 {
		kinds := make([]string, 0, len(params.Kinds))
		for _, k := range params.Kinds {
			kinds = append(kinds, string(k))
		}
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key: fieldKind,
					Match: &qdrant.Match{
						MatchValue: &qdrant.Match_Keywords{
							Keywords: &qdrant.RepeatedStrings{
								Strings: kinds,
							},
						},
					},
				},
			},
		})
	}

	if params.Category != "" {
		conditions = append(conditions, keywordCondition(fieldCategory, params.Category))
	}

	if len(conditions) == 0 {
		return nil
	}

	return &qdrant.Filter{
		Must: conditions,
	}
}

func keywordCondition(key, value string) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Keyword{
						Keyword: value,
					},
				},
			},
		},
	}
}

func integerCondition(key string, value int64) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Integer{
						Integer: value,
					},
				},
			},
		},
	}
}

// scoredPointToHit converts a Qdrant scored point to a lexicon Hit.
func scoredPointToHit(p *qdrant.ScoredPoint) lexicon.Hit {
	payload := p.Payload

	hit := lexicon.Hit{
		ID:           int64(getIntValue(payload, fieldEntryID)),
		Kind:         lexicon.Kind(getStringValue(payload, fieldKind)),
		Headword:     getStringValue(payload, fieldHeadword),
		PartOfSpeech: getStringValue(payload, fieldPartOfSpeech),
		Gloss:        getStringValue(payload, fieldGloss),
		Category:     getStringValue(payload, fieldCategory),
		Similarity:   float64(p.Score),
	}

	source := getStringValue(payload, fieldSourceText)
	target := getStringValue(payload, fieldTargetText)
	if source != "" || target != "" {
		hit.Example = &lexicon.ExamplePair{
			SourceText: source,
			TargetText: target,
		}
	}

	return hit
}

// Helper functions to extract values from Qdrant payload

func getStringValue(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if sv, ok := v.Kind.(*qdrant.Value_StringValue); ok {
			return sv.StringValue
		}
	}
	return ""
}

func getIntValue(payload map[string]*qdrant.Value, key string) int {
	if v, ok := payload[key]; ok {
		if iv, ok := v.Kind.(*qdrant.Value_IntegerValue); ok {
			return int(iv.IntegerValue)
		}
	}
	return 0
}
