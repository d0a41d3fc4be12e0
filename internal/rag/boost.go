package rag

import "github.com/miappbora/bora-tutor/internal/lexicon"

// mergeExact prepends a synthetic top-ranked hit for an exact headword
// match, unless a lemma hit for the same headword was already
// retrieved. The combined list is truncated back to topK so the boost
// never grows the result set.
func mergeExact(hits []lexicon.Hit, record *lexicon.HeadwordRecord, topK int) []lexicon.Hit {
	if record == nil {
		return hits
	}

	for _, h := range hits {
		if h.Headword == record.Headword && h.Kind == lexicon.KindLemma {
			return hits
		}
	}

	boosted := lexicon.Hit{
		ID:           lexicon.SyntheticID,
		Kind:         lexicon.KindLemma,
		Headword:     record.Headword,
		PartOfSpeech: record.PartOfSpeech,
		Gloss:        record.Gloss,
		Category:     record.Category,
		Similarity:   1.0,
	}

	merged := make([]lexicon.Hit, 0, len(hits)+1)
	merged = append(merged, boosted)
	merged = append(merged, hits...)

	if topK > 0 && len(merged) > topK {
		merged = merged[:topK]
	}
	return merged
}
