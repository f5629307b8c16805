package services

import (
	"context"
	"errors"
	"time"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driving"
	"github.com/geotech-hub/geoaudit/internal/logger"
)

// Ensure AuditService implements the interface.
var _ driving.AuditService = (*AuditService)(nil)

// AuditService runs the audit pipeline:
// normalizing, gating, extracting, matching, assessing, scoring,
// summarizing and questioning.
type AuditService struct {
	registry  driven.NormaliserRegistry
	gate      *RelevanceGate
	extractor *ParameterExtractor
	matcher   *KnowledgeMatcher
	assessor  *RiskAssessor
	summary   *SummaryGenerator
	questions *QuestionGenerator
	estimator *ProposalService
	catalogue driven.CatalogueLookup
	timeout   time.Duration
	observe   func(domain.Stage)
}

// NewAuditService wires the pipeline stages.
// The llm may be nil; LLM-backed stages then fail with domain.ErrLLMUnavailable.
func NewAuditService(
	registry driven.NormaliserRegistry,
	llm driven.LLMService,
	kb driven.KnowledgeBase,
	prompts driven.PromptStore,
	settings domain.AuditSettings,
) *AuditService {
	return &AuditService{
		registry:  registry,
		gate:      NewRelevanceGate(llm, prompts, settings.LLM.CheapModel),
		extractor: NewParameterExtractor(llm, prompts),
		matcher:   NewKnowledgeMatcher(kb),
		assessor:  NewRiskAssessor(llm, prompts),
		summary:   NewSummaryGenerator(llm, prompts),
		questions: NewQuestionGenerator(llm, prompts),
		estimator: NewProposalService(),
		timeout:   settings.RequestTimeout,
	}
}

// SetCatalogue enables inventory and equipment enrichment.
func (s *AuditService) SetCatalogue(c driven.CatalogueLookup) {
	s.catalogue = c
}

// SetStageObserver registers a callback invoked on every stage transition.
func (s *AuditService) SetStageObserver(fn func(domain.Stage)) {
	s.observe = fn
}

// Analyze runs one document through the pipeline.
func (s *AuditService) Analyze(ctx context.Context, req domain.AuditRequest) (*domain.AuditResult, error) {
	logger.Section("Audit")
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.enter(domain.StageNormalizing)
	doc, err := s.registry.Normalise(ctx, req.Filename, req.Content)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentFormat) || errors.Is(err, domain.ErrUnsupportedType) {
			s.enter(domain.StageFailed)
			return nil, err
		}
		return nil, s.fail(domain.StageNormalizing, err)
	}

	s.enter(domain.StageGating)
	decision := s.gate.Check(ctx, doc.FullText)
	if !decision.Accepted {
		s.enter(domain.StageRejected)
		logger.Info("Document %q rejected: %s", req.Filename, decision.Reason)
		return nil, &domain.DomainRejectionError{Reason: decision.Reason}
	}
	logger.Debug("Gate accepted %q: %s (%d keyword hits)", req.Filename, decision.Reason, decision.KeywordHits)

	s.enter(domain.StageExtracting)
	params, err := s.extractor.Extract(ctx, doc.FullText)
	if err != nil {
		return nil, s.fail(domain.StageExtracting, err)
	}

	s.enter(domain.StageMatching)
	normative := s.matcher.BuildContext(params, doc.FullText)

	s.enter(domain.StageAssessing)
	risks, err := s.assessor.Assess(ctx, params, normative, doc.FullText)
	if err != nil {
		return nil, s.fail(domain.StageAssessing, err)
	}

	s.enter(domain.StageScoring)
	confidence := ScoreConfidence(params, doc.FullText)

	s.enter(domain.StageSummarizing)
	summary, err := s.summary.Generate(ctx, params, risks, doc, normative)
	if err != nil {
		return nil, s.fail(domain.StageSummarizing, err)
	}

	questions := []string{}
	if confidence < QuestionThreshold {
		s.enter(domain.StageQuestioning)
		questions = s.questions.Generate(ctx, params, risks)
	}

	result := &domain.AuditResult{
		Parameters: params,
		Risks:      risks,
		Summary:    summary,
		Confidence: confidence,
		Questions:  questions,
		Inventory:  []domain.InventoryItem{},
		Equipment:  []domain.EquipmentItem{},
	}
	s.enrich(ctx, result)

	s.enter(domain.StageComplete)
	logger.Info("Audit of %q complete: confidence %.2f, %d risks", req.Filename, confidence, len(risks))
	return result, nil
}

// enrich adds catalogue matches and the cost estimate. Lookup failures
// leave the lists empty.
func (s *AuditService) enrich(ctx context.Context, result *domain.AuditResult) {
	if s.catalogue != nil {
		profile := ""
		if result.Parameters.RequiredProfile != nil {
			profile = *result.Parameters.RequiredProfile
		}
		inventory, equipment, err := s.catalogue.Match(ctx, result.Parameters.WorkType, profile)
		if err != nil {
			logger.Warn("Catalogue lookup failed: %v", err)
		}
		if inventory != nil {
			result.Inventory = inventory
		}
		if equipment != nil {
			result.Equipment = equipment
		}
	}

	estimate := s.estimator.Estimate(domain.Proposal{
		Parameters: result.Parameters,
		Inventory:  result.Inventory,
		Equipment:  result.Equipment,
	})
	result.EstimatedTotal = estimate.Total
}

func (s *AuditService) enter(stage domain.Stage) {
	logger.Debug("Stage: %s", stage)
	if s.observe != nil {
		s.observe(stage)
	}
}

func (s *AuditService) fail(stage domain.Stage, err error) error {
	s.enter(domain.StageFailed)
	logger.Error("Stage %s failed: %v", stage, err)
	return domain.NewStageError(stage, err)
}
