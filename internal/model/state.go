package model

import "time"

// RetrievalChunk is a unit of guideline text returned by the retrieval
// store. Immutable once returned; RelevanceScore is cosine similarity,
// higher is better.
type RetrievalChunk struct {
	DocID          string            `json:"doc_id"`
	DocVersion     string            `json:"doc_version"`
	Section        string            `json:"section"`
	ChunkID        string            `json:"chunk_id"`
	Text           string            `json:"text"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	RelevanceScore float64           `json:"relevance_score"`
}

// CitationKey is the doc_id:section form used in assessment citations.
func (c RetrievalChunk) CitationKey() string {
	return c.DocID + ":" + c.Section
}

// ToolCall is an append-only audit record of one collaborator invocation.
type ToolCall struct {
	ToolName   string         `json:"tool_name"`
	InputData  map[string]any `json:"input_data"`
	OutputData map[string]any `json:"output_data"`
	Timestamp  time.Time      `json:"timestamp"`
	DurationMS int64          `json:"duration_ms,omitempty"`
}

// WorkflowState is the single mutable aggregate threaded through every
// stage of a run. The workflow engine owns it exclusively until the run
// completes or fails, after which it is handed read-only to the run store.
type WorkflowState struct {
	QuoteSubmission            QuoteSubmission   `json:"quote_submission"`
	EnrichmentResult           *EnrichmentResult `json:"enrichment_result,omitempty"`
	RetrievedGuidelines        []RetrievalChunk  `json:"retrieved_guidelines"`
	UWAssessment               *UWAssessment     `json:"uw_assessment,omitempty"`
	Decision                   *Decision         `json:"decision,omitempty"`
	PremiumBreakdown           *PremiumBreakdown `json:"premium_breakdown,omitempty"`
	ToolCalls                  []ToolCall        `json:"tool_calls"`
	CurrentStage               string            `json:"current_stage"`
	MissingInfo                []string          `json:"missing_info"`
	AdditionalAnswers          map[string]any    `json:"additional_answers,omitempty"`
	CitationGuardrailTriggered bool              `json:"citation_guardrail_triggered"`
}

// AppendToolCall records a collaborator invocation on the audit log.
func (s *WorkflowState) AppendToolCall(name string, input, output map[string]any) {
	s.ToolCalls = append(s.ToolCalls, ToolCall{
		ToolName:   name,
		InputData:  input,
		OutputData: output,
		Timestamp:  time.Now().UTC(),
	})
}

// HasToolCall reports whether a tool with the given name appears in the log.
func (s *WorkflowState) HasToolCall(name string) bool {
	for _, tc := range s.ToolCalls {
		if tc.ToolName == name {
			return true
		}
	}
	return false
}
