// Package domain defines the core business entities for geoaudit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - NormalizedDocument: Uniform text view of an uploaded file
//   - ProjectParameters: Structured parameters extracted from a document
//   - RiskFinding: One engineering risk identified for a project
//   - KnowledgeEntry: One static standard (ГОСТ, СП) from the knowledge base
//   - AuditResult: The complete output of one audit
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
