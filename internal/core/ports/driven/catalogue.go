package driven

import (
	"context"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
)

// CatalogueLookup finds priced inventory and equipment for a project.
// Empty results are legitimate; implementations never fabricate items.
type CatalogueLookup interface {
	// Match returns inventory matching profile (skipped when empty) and
	// a short list of equipment matching workType.
	Match(ctx context.Context, workType, profile string) ([]domain.InventoryItem, []domain.EquipmentItem, error)
}
