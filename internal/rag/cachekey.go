package rag

import (
	"fmt"
	"strings"

	"github.com/miappbora/bora-tutor/internal/pkg/hash"
)

// cacheKey builds the composite cache key for a request. Query and
// category are normalized so trivially different spellings of the same
// question share one entry; history is deliberately excluded since the
// retrieved material depends only on the query itself.
func cacheKey(req Request, topK int, minSimilarity float64) string {
	return hash.CompositeKey(
		strings.ToLower(strings.TrimSpace(req.Query)),
		fmt.Sprintf("%d", topK),
		fmt.Sprintf("%.2f", minSimilarity),
		strings.ToLower(strings.TrimSpace(req.Category)),
		fmt.Sprintf("%t", req.Fast),
	)
}
