package workflow

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// retrieveGuidelines builds a natural-language query from the submission
// characteristics and fetches the top-k guideline chunks.
func (e *Engine) retrieveGuidelines(ctx context.Context, state *model.WorkflowState) error {
	sub := &state.QuoteSubmission
	enrichment := state.EnrichmentResult

	parts := []string{"property type " + sub.PropertyType}

	if enrichment != nil {
		hz := enrichment.HazardScores
		if hz.WildfireRisk > 0.5 {
			parts = append(parts, "wildfire risk assessment")
		}
		if hz.FloodRisk > 0.5 {
			parts = append(parts, "flood risk evaluation")
		}
		if hz.WindRisk > 0.5 {
			parts = append(parts, "wind damage risk")
		}
		if hz.EarthquakeRisk > 0.5 {
			parts = append(parts, "earthquake hazard")
		}
	}

	if sub.ConstructionYear != nil {
		switch {
		case *sub.ConstructionYear < 1940:
			parts = append(parts, "old construction requirements")
		case *sub.ConstructionYear < 1970:
			parts = append(parts, "older building standards")
		}
	}
	if sub.RoofType != "" {
		parts = append(parts, "roof "+sub.RoofType)
	}
	if sub.FoundationType != "" {
		parts = append(parts, "foundation "+sub.FoundationType)
	}

	query := strings.Join(parts, " ")

	chunks, err := e.retriever.Query(ctx, query, e.topK)
	if err != nil {
		return eris.Wrap(err, "retrieve: guideline query")
	}

	state.RetrievedGuidelines = chunks
	state.CurrentStage = string(StageRetrieve)
	state.AppendToolCall("rag_retrieval",
		map[string]any{"query": query, "n_results": e.topK},
		map[string]any{"retrieved_chunks": chunks},
	)
	return nil
}
