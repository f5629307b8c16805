// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Normaliser / NormaliserRegistry: Turns uploads into NormalizedDocuments
//   - KnowledgeBase: Static standards for the normative context
//   - ResultCache: Content-hash keyed audit results
//   - QuotaCounter: Per-client fixed-window counters
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Without it every LLM-backed stage fails with ErrLLMUnavailable.
//   - CatalogueLookup: Without it audits carry no inventory or equipment.
//   - HistoryStore: Without it completed audits are not recorded.
//   - PromptStore: Without it embedded prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
