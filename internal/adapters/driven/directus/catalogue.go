package directus

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

// Ensure Client implements the catalogue port.
var _ driven.CatalogueLookup = (*Client)(nil)

// Catalogue collections and limits.
const (
	InventoryCollection = "shpunts"
	EquipmentCollection = "machinery"
	EquipmentLimit      = 3

	defaultEquipmentCategory = "Спецтехника"
)

type inventoryItem struct {
	Name  string `json:"name"`
	Price any    `json:"price"`
	Stock any    `json:"stock_quantity"`
}

type equipmentItem struct {
	ID       any    `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Category string `json:"category"`
}

// Match returns inventory whose name contains profile and up to three
// machines whose name or category contains workType. An empty argument
// skips its query.
func (c *Client) Match(ctx context.Context, workType, profile string) ([]domain.InventoryItem, []domain.EquipmentItem, error) {
	inventory := []domain.InventoryItem{}
	equipment := []domain.EquipmentItem{}

	if profile != "" {
		items, err := c.inventory(ctx, profile)
		if err != nil {
			return nil, nil, err
		}
		inventory = items
	}

	if workType != "" {
		items, err := c.equipment(ctx, workType)
		if err != nil {
			return nil, nil, err
		}
		equipment = items
	}

	return inventory, equipment, nil
}

func (c *Client) inventory(ctx context.Context, profile string) ([]domain.InventoryItem, error) {
	query := url.Values{}
	query.Set("filter[name][_contains]", profile)
	query.Set("fields", "name,price,stock_quantity")

	var resp itemsResponse[[]inventoryItem]
	if err := c.getItems(ctx, InventoryCollection, query, &resp); err != nil {
		return nil, fmt.Errorf("inventory lookup: %w", err)
	}

	items := make([]domain.InventoryItem, 0, len(resp.Data))
	for _, it := range resp.Data {
		items = append(items, domain.InventoryItem{
			Name:  it.Name,
			Price: number(it.Price),
			Stock: number(it.Stock),
		})
	}
	return items, nil
}

func (c *Client) equipment(ctx context.Context, workType string) ([]domain.EquipmentItem, error) {
	query := url.Values{}
	query.Set("filter[_or][0][name][_contains]", workType)
	query.Set("filter[_or][1][category][_contains]", workType)
	query.Set("fields", "id,name,status,category")
	query.Set("limit", strconv.Itoa(EquipmentLimit))

	var resp itemsResponse[[]equipmentItem]
	if err := c.getItems(ctx, EquipmentCollection, query, &resp); err != nil {
		return nil, fmt.Errorf("equipment lookup: %w", err)
	}

	items := make([]domain.EquipmentItem, 0, len(resp.Data))
	for _, it := range resp.Data {
		category := it.Category
		if category == "" {
			category = defaultEquipmentCategory
		}
		items = append(items, domain.EquipmentItem{
			ID:          identifier(it.ID),
			Name:        it.Name,
			Description: it.Status,
			Category:    category,
		})
	}
	return items, nil
}
