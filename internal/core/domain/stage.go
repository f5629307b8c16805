package domain

// Stage names one step of the audit pipeline.
type Stage string

// Pipeline stages, in execution order, plus the terminal states.
const (
	StageNormalizing Stage = "normalizing"
	StageGating      Stage = "gating"
	StageExtracting  Stage = "extracting"
	StageMatching    Stage = "matching"
	StageAssessing   Stage = "assessing"
	StageScoring     Stage = "scoring"
	StageSummarizing Stage = "summarizing"
	StageQuestioning Stage = "questioning"
	StageComplete    Stage = "complete"
	StageRejected    Stage = "rejected"
	StageFailed      Stage = "failed"
)

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// IsTerminal returns true for states the pipeline never leaves.
func (s Stage) IsTerminal() bool {
	return s == StageComplete || s == StageRejected || s == StageFailed
}

// LLMBacked returns true for stages that call the language model.
func (s Stage) LLMBacked() bool {
	switch s {
	case StageGating, StageExtracting, StageAssessing, StageSummarizing, StageQuestioning:
		return true
	default:
		return false
	}
}

// GateDecision is the outcome of the relevance gate.
type GateDecision struct {
	Accepted bool
	Reason   string

	// KeywordHits is the number of distinct domain keywords found.
	KeywordHits int

	// UsedClassifier is true when the LLM classification call was made.
	UsedClassifier bool
}
