package model

import "math"

// DecisionType is the bounded underwriting outcome.
type DecisionType string

const (
	DecisionAccept  DecisionType = "ACCEPT"
	DecisionRefer   DecisionType = "REFER"
	DecisionDecline DecisionType = "DECLINE"
)

// TriggerSeverity grades a flagged underwriting concern.
type TriggerSeverity string

const (
	SeverityLow    TriggerSeverity = "low"
	SeverityMedium TriggerSeverity = "medium"
	SeverityHigh   TriggerSeverity = "high"
)

// UWTrigger is a concern flagged during assessment.
type UWTrigger struct {
	TriggerType    string          `json:"trigger_type"`
	Description    string          `json:"description"`
	Severity       TriggerSeverity `json:"severity"`
	RequiresAction bool            `json:"requires_action"`
}

// QuestionType distinguishes how a follow-up question is answered.
type QuestionType string

const (
	QuestionText    QuestionType = "text"
	QuestionChoice  QuestionType = "choice"
	QuestionNumeric QuestionType = "numeric"
)

// UWQuestion is a pending information request generated by validation or
// by risk-driven assessment.
type UWQuestion struct {
	QuestionID   string       `json:"question_id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	Required     bool         `json:"required"`
	Options      []string     `json:"options,omitempty"`
}

// UWAssessment is the aggregated eligibility view of an enriched submission.
// EligibilityScore and Confidence are always within [0,1].
type UWAssessment struct {
	EligibilityScore  float64      `json:"eligibility_score"`
	Triggers          []UWTrigger  `json:"triggers"`
	RequiredQuestions []UWQuestion `json:"required_questions"`
	Reasoning         string       `json:"reasoning"`
	Citations         []string     `json:"citations"` // doc_id:section keys
	Confidence        float64      `json:"confidence"`
}

// HasHighSeverityTrigger reports whether any trigger is high severity.
func (a *UWAssessment) HasHighSeverityTrigger() bool {
	for _, t := range a.Triggers {
		if t.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// PremiumBreakdown is the rating tool's output. TotalPremium always equals
// BasePremium + HazardSurcharge after 2-decimal rounding.
type PremiumBreakdown struct {
	BasePremium     float64            `json:"base_premium"`
	HazardSurcharge float64            `json:"hazard_surcharge"`
	TotalPremium    float64            `json:"total_premium"`
	RatingFactors   map[string]float64 `json:"rating_factors"`
}

// Consistent reports whether the total matches base + surcharge to the cent.
func (p *PremiumBreakdown) Consistent() bool {
	return math.Abs(p.TotalPremium-Round2(p.BasePremium+p.HazardSurcharge)) < 0.001
}

// Round2 rounds to two decimal places, the currency precision used
// throughout rating.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Decision is the terminal artifact of a run (or of one missing-info round).
type Decision struct {
	Decision          DecisionType      `json:"decision"`
	Rationale         string            `json:"rationale"`
	Citations         []string          `json:"citations"`
	Premium           *PremiumBreakdown `json:"premium,omitempty"`
	RequiredQuestions []UWQuestion      `json:"required_questions,omitempty"`
	NextSteps         []string          `json:"next_steps"`
}
