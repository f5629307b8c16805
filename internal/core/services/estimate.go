package services

import (
	"math"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driving"
)

// Ensure ProposalService implements the interface.
var _ driving.ProposalService = (*ProposalService)(nil)

const shiftLineItem = "Смены техники"

// ProposalService prices proposals from catalogue data.
type ProposalService struct{}

// NewProposalService creates a proposal service.
func NewProposalService() *ProposalService {
	return &ProposalService{}
}

// Estimate prices the work volume at the first matched inventory item that
// has a price, and adds equipment shifts when both count and rate are given.
// Nothing is invented: without a volume or a priced item there is no
// material line, and with no lines the total is nil.
func (s *ProposalService) Estimate(p domain.Proposal) domain.CostEstimate {
	lines := []domain.CostLine{}

	if p.Parameters.Volume != nil && *p.Parameters.Volume > 0 {
		for _, item := range p.Inventory {
			if item.Price <= 0 {
				continue
			}
			qty := *p.Parameters.Volume
			lines = append(lines, domain.CostLine{
				Item:     item.Name,
				Quantity: qty,
				Price:    item.Price,
				Total:    roundMoney(qty * item.Price),
			})
			break
		}
	}

	if p.Shifts > 0 && p.ShiftRate > 0 {
		lines = append(lines, domain.CostLine{
			Item:     shiftLineItem,
			Quantity: float64(p.Shifts),
			Price:    p.ShiftRate,
			Total:    roundMoney(float64(p.Shifts) * p.ShiftRate),
		})
	}

	if len(lines) == 0 {
		return domain.CostEstimate{Lines: lines}
	}
	var total float64
	for _, l := range lines {
		total += l.Total
	}
	total = roundMoney(total)
	return domain.CostEstimate{Lines: lines, Total: &total}
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
