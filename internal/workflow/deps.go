// Package workflow implements the underwriting pipeline as an explicit
// finite-state machine: a stage enum, a handler per stage, and a branch
// function per stage that picks the next stage from the current state.
package workflow

import (
	"context"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// AddressNormalizer parses a submission address. Best-effort: malformed
// input yields partial results, not an error.
type AddressNormalizer interface {
	Normalize(ctx context.Context, sub *model.QuoteSubmission) (*model.NormalizedAddress, error)
}

// HazardScorer derives peril scores for a normalized address, each in [0,1].
type HazardScorer interface {
	Score(ctx context.Context, addr *model.NormalizedAddress) (*model.HazardScores, error)
}

// GuidelineRetriever answers nearest-neighbor queries over the guideline
// corpus, ordered by relevance score descending.
type GuidelineRetriever interface {
	Query(ctx context.Context, query string, k int) ([]model.RetrievalChunk, error)
}

// Rater prices a submission given its coverage and risk profile.
type Rater interface {
	Price(ctx context.Context, coverage float64, propertyType string, hazard model.HazardScores, constructionYear *int) (*model.PremiumBreakdown, error)
}
