// Package services implements the driving ports.
//
// AuditService runs the document pipeline stage by stage and
// GuardedAuditService wraps it with the upload limit, result cache,
// per-client quota and background history writes. ChatService,
// ProposalService and HistoryService back the remaining API endpoints.
package services
