package driving

import "github.com/geotech-hub/geoaudit/internal/core/domain"

// ProposalService prices a proposal assembled from an audit.
type ProposalService interface {
	// Estimate returns the cost breakdown. Total is nil when nothing could be priced.
	Estimate(p domain.Proposal) domain.CostEstimate
}
