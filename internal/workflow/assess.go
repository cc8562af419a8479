package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

var eligiblePropertyTypes = map[string]bool{
	"single_family": true,
	"condo":         true,
	"townhouse":     true,
}

// citationKeywords mark a retrieved chunk as supporting evidence.
var citationKeywords = []string{"risk", "requirement", "eligible", "standard"}

// assessUnderwriting aggregates enrichment and retrieved guidelines into an
// eligibility score, triggers, follow-up questions, and citations. Pure
// rule evaluation, no collaborator calls.
func (e *Engine) assessUnderwriting(_ context.Context, state *model.WorkflowState) error {
	sub := &state.QuoteSubmission
	enrichment := state.EnrichmentResult

	var triggers []model.UWTrigger
	var questions []model.UWQuestion
	score := 0.8

	if !eligiblePropertyTypes[sub.PropertyType] {
		triggers = append(triggers, model.UWTrigger{
			TriggerType:    "property_type",
			Description:    fmt.Sprintf("Property type %s may not be eligible", sub.PropertyType),
			Severity:       model.SeverityHigh,
			RequiresAction: true,
		})
		score -= 0.3
	}

	if sub.ConstructionYear != nil && *sub.ConstructionYear < 1940 {
		triggers = append(triggers, model.UWTrigger{
			TriggerType:    "construction_age",
			Description:    "Property constructed before 1940 requires additional review",
			Severity:       model.SeverityMedium,
			RequiresAction: true,
		})
		score -= 0.2
		questions = append(questions, model.UWQuestion{
			QuestionID:   "construction_updates",
			QuestionText: "What updates have been made to electrical, plumbing, and roofing systems?",
			QuestionType: model.QuestionText,
			Required:     true,
		})
	}

	if enrichment != nil {
		hz := enrichment.HazardScores

		switch {
		case hz.WildfireRisk > 0.7:
			triggers = append(triggers, model.UWTrigger{
				TriggerType:    "wildfire_risk",
				Description:    "High wildfire risk detected",
				Severity:       model.SeverityHigh,
				RequiresAction: true,
			})
			score -= 0.3
			questions = append(questions, model.UWQuestion{
				QuestionID:   "wildfire_mitigation",
				QuestionText: "What wildfire mitigation measures are in place?",
				QuestionType: model.QuestionText,
				Required:     true,
			})
		case hz.WildfireRisk > 0.5:
			triggers = append(triggers, model.UWTrigger{
				TriggerType: "wildfire_risk",
				Description: "Moderate wildfire risk detected",
				Severity:    model.SeverityMedium,
			})
			score -= 0.1
		}

		if hz.FloodRisk > 0.7 {
			triggers = append(triggers, model.UWTrigger{
				TriggerType:    "flood_risk",
				Description:    "High flood risk detected",
				Severity:       model.SeverityHigh,
				RequiresAction: true,
			})
			score -= 0.3
			questions = append(questions, model.UWQuestion{
				QuestionID:   "elevation_certificate",
				QuestionText: "Is an elevation certificate available?",
				QuestionType: model.QuestionChoice,
				Required:     true,
				Options:      []string{"Yes", "No", "Unknown"},
			})
		}
	}

	// Citations: every retrieved chunk containing a supporting keyword, in
	// order of first appearance; duplicates are kept intentionally so the
	// citation list mirrors the retrieval ranking.
	var citations []string
	for _, chunk := range state.RetrievedGuidelines {
		text := strings.ToLower(chunk.Text)
		for _, kw := range citationKeywords {
			if strings.Contains(text, kw) {
				citations = append(citations, chunk.CitationKey())
				break
			}
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	var reasoning []string
	if len(triggers) > 0 {
		reasoning = append(reasoning, fmt.Sprintf("Identified %d risk factors:", len(triggers)))
		for _, t := range triggers {
			reasoning = append(reasoning, "- "+t.Description)
		}
	} else {
		reasoning = append(reasoning, "No significant risk factors identified")
	}
	reasoning = append(reasoning, fmt.Sprintf("Eligibility score: %.2f", score))

	confidence := 0.6
	if len(citations) > 0 {
		confidence = 0.85
	}

	assessment := &model.UWAssessment{
		EligibilityScore:  score,
		Triggers:          triggers,
		RequiredQuestions: questions,
		Reasoning:         strings.Join(reasoning, "; "),
		Citations:         citations,
		Confidence:        confidence,
	}

	state.UWAssessment = assessment
	state.CurrentStage = string(StageAssess)
	state.AppendToolCall("underwriting_assessment",
		map[string]any{
			"submission":       *sub,
			"guidelines_count": len(state.RetrievedGuidelines),
		},
		map[string]any{"assessment": *assessment},
	)
	return nil
}
