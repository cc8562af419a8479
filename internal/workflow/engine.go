package workflow

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// Stage identifies a node in the underwriting state machine.
type Stage string

const (
	StageValidate    Stage = "validate"
	StageEnrich      Stage = "enrich"
	StageRetrieve    Stage = "retrieve_guidelines"
	StageAssess      Stage = "uw_assess"
	StageGuardrail   Stage = "citation_guardrail"
	StageRate        Stage = "rate"
	StageMissingInfo Stage = "handle_missing_info"
	StageDecide      Stage = "decide"
	StageEnd         Stage = "end"
)

// Mode selects the engine variant.
type Mode string

const (
	// ModeBasic has no missing-info recovery loop: missing fields route
	// straight to a REFER decision.
	ModeBasic Mode = "basic"
	// ModeInteractive adds the handle_missing_info node and its back-edges,
	// letting a caller-supplied answers map resume the run at enrich.
	ModeInteractive Mode = "interactive"
)

// maxSteps bounds one invocation. The graph has at most two back-edges and
// each consumes its precondition, so hitting the bound is a programming
// error, not a business outcome.
const maxSteps = 32

// handler mutates the state for one stage.
type handler func(ctx context.Context, state *model.WorkflowState) error

// Engine evaluates the underwriting state machine. It is stateless between
// invocations: the pause/resume of the missing-info loop is implemented by
// the caller re-invoking Run with the same submission plus answers.
type Engine struct {
	mode      Mode
	normalize AddressNormalizer
	hazard    HazardScorer
	retriever GuidelineRetriever
	rater     Rater
	topK      int

	handlers map[Stage]handler
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithTopK sets how many guideline chunks each run retrieves.
func WithTopK(k int) EngineOption {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// New creates an Engine in the given mode. All four collaborators are
// required.
func New(mode Mode, normalize AddressNormalizer, hazard HazardScorer, retriever GuidelineRetriever, rater Rater, opts ...EngineOption) *Engine {
	e := &Engine{
		mode:      mode,
		normalize: normalize,
		hazard:    hazard,
		retriever: retriever,
		rater:     rater,
		topK:      5,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.handlers = map[Stage]handler{
		StageValidate:    e.validateSubmission,
		StageEnrich:      e.enrichData,
		StageRetrieve:    e.retrieveGuidelines,
		StageAssess:      e.assessUnderwriting,
		StageGuardrail:   e.applyCitationGuardrail,
		StageRate:        e.ratePolicy,
		StageMissingInfo: e.handleMissingInfo,
		StageDecide:      e.makeDecision,
	}
	return e
}

// Mode returns the engine variant.
func (e *Engine) Mode() Mode { return e.mode }

// Run executes one round of the pipeline. REFER and DECLINE are normal
// results; an error is returned only for infrastructure failures, together
// with the state computed so far (fields beyond the failing stage are not
// trusted).
func (e *Engine) Run(ctx context.Context, submission model.QuoteSubmission, answers map[string]any) (*model.WorkflowState, error) {
	state := &model.WorkflowState{
		QuoteSubmission: submission,
		CurrentStage:    "start",
	}
	if e.mode == ModeInteractive && len(answers) > 0 {
		state.AdditionalAnswers = answers
	}

	log := zap.L().With(zap.String("applicant", submission.ApplicantName), zap.String("mode", string(e.mode)))
	log.Info("workflow: run starting")

	stage := StageValidate
	for steps := 0; stage != StageEnd; steps++ {
		if steps >= maxSteps {
			return state, eris.Errorf("workflow: step limit exceeded at %s", stage)
		}

		h, ok := e.handlers[stage]
		if !ok {
			return state, eris.Errorf("workflow: no handler for stage %s", stage)
		}
		if err := h(ctx, state); err != nil {
			log.Error("workflow: stage failed", zap.String("stage", string(stage)), zap.Error(err))
			return state, eris.Wrapf(err, "workflow: stage %s", stage)
		}

		next := e.next(stage, state)
		log.Debug("workflow: stage complete",
			zap.String("stage", string(stage)),
			zap.String("next", string(next)),
		)
		stage = next
	}

	if err := checkInvariants(state); err != nil {
		return state, err
	}

	log.Info("workflow: run finished",
		zap.String("decision", string(state.Decision.Decision)),
		zap.Bool("guardrail", state.CitationGuardrailTriggered),
		zap.Int("tool_calls", len(state.ToolCalls)),
	)
	return state, nil
}

// next is the branch function: given the completed stage and the state, it
// returns the stage to run next.
func (e *Engine) next(stage Stage, state *model.WorkflowState) Stage {
	switch stage {
	case StageValidate:
		if len(state.MissingInfo) > 0 {
			if e.mode == ModeInteractive {
				return StageMissingInfo
			}
			return StageDecide
		}
		return StageEnrich

	case StageMissingInfo:
		if len(state.MissingInfo) > 0 {
			return StageDecide
		}
		return StageEnrich

	case StageEnrich:
		return StageRetrieve

	case StageRetrieve:
		return StageAssess

	case StageAssess:
		return StageGuardrail

	case StageGuardrail:
		if state.CitationGuardrailTriggered {
			// Rating is pointless once the run is forced to REFER.
			return StageDecide
		}
		return StageRate

	case StageRate:
		return StageDecide

	case StageDecide:
		// Interactive back-edge: loop only while unconsumed answers remain,
		// so a REFER round without answers terminates.
		if e.mode == ModeInteractive &&
			state.Decision != nil &&
			state.Decision.Decision == model.DecisionRefer &&
			len(state.Decision.RequiredQuestions) > 0 &&
			len(state.AdditionalAnswers) > 0 {
			return StageMissingInfo
		}
		return StageEnd

	default:
		return StageEnd
	}
}

// checkInvariants asserts terminal-state consistency; violations are
// programmer errors, never business outcomes.
func checkInvariants(state *model.WorkflowState) error {
	if state.Decision == nil {
		return eris.New("workflow: run ended without a decision")
	}
	if state.Decision.Rationale == "" {
		return eris.New("workflow: decision has no rationale")
	}
	if state.PremiumBreakdown != nil && !state.PremiumBreakdown.Consistent() {
		return eris.Errorf("workflow: premium total %.2f != base %.2f + surcharge %.2f",
			state.PremiumBreakdown.TotalPremium,
			state.PremiumBreakdown.BasePremium,
			state.PremiumBreakdown.HazardSurcharge,
		)
	}
	return nil
}
