package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the embedded default
	// or an error when no default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names. All are system prompts without placeholders.
const (
	// PromptGate classifies whether a text is a geotechnical document.
	PromptGate = "gate"

	// PromptExtract extracts project parameters as strict JSON.
	PromptExtract = "extract"

	// PromptRisks assesses engineering risks against normative context.
	PromptRisks = "risks"

	// PromptSummary writes the expert conclusion.
	PromptSummary = "summary"

	// PromptQuestions asks clarifying questions.
	PromptQuestions = "questions"

	// PromptChatSystem is the persona for interactive consultation.
	PromptChatSystem = "chat_system"
)
