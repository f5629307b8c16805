package directus

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

// HistoryCollection holds completed audits.
const HistoryCollection = "audit_history"

const historyFields = "id,filename,work_type,soil_type,volume,depth,confidence_score," +
	"risks_count,estimated_total,technical_summary,client_id,date_created"

// HistoryStore adapts the client to the history port.
type HistoryStore struct {
	client *Client
}

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore returns a history store backed by the audit_history collection.
func (c *Client) HistoryStore() *HistoryStore {
	return &HistoryStore{client: c}
}

// historyItem is the wire shape of an audit_history row. Directus assigns
// the primary key and date_created.
type historyItem struct {
	ID             any     `json:"id,omitempty"`
	Filename       string  `json:"filename"`
	WorkType       string  `json:"work_type"`
	SoilType       *string `json:"soil_type"`
	Volume         any     `json:"volume"`
	Depth          any     `json:"depth"`
	Confidence     any     `json:"confidence_score"`
	RisksCount     any     `json:"risks_count"`
	EstimatedTotal any     `json:"estimated_total"`
	Summary        string  `json:"technical_summary"`
	ClientID       *string `json:"client_id"`
	DateCreated    string  `json:"date_created,omitempty"`
}

// Save records a completed audit.
func (h *HistoryStore) Save(ctx context.Context, r domain.HistoryRecord) error {
	item := historyItem{
		Filename:       r.Filename,
		WorkType:       r.WorkType,
		SoilType:       r.SoilType,
		Volume:         r.Volume,
		Depth:          r.Depth,
		Confidence:     r.Confidence,
		RisksCount:     r.RisksCount,
		EstimatedTotal: r.EstimatedTotal,
		Summary:        r.Summary,
	}
	if r.ClientID != "" {
		item.ClientID = &r.ClientID
	}
	if err := h.client.createItem(ctx, HistoryCollection, item); err != nil {
		return fmt.Errorf("save audit history: %w", err)
	}
	return nil
}

// List returns a client's newest audits first.
func (h *HistoryStore) List(ctx context.Context, clientID string, limit int) ([]domain.HistoryRecord, error) {
	query := url.Values{}
	if clientID == "" {
		query.Set("filter[client_id][_null]", "true")
	} else {
		query.Set("filter[client_id][_eq]", clientID)
	}
	query.Set("sort", "-date_created")
	query.Set("fields", historyFields)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp itemsResponse[[]historyItem]
	if err := h.client.getItems(ctx, HistoryCollection, query, &resp); err != nil {
		return nil, fmt.Errorf("list audit history: %w", err)
	}

	records := make([]domain.HistoryRecord, 0, len(resp.Data))
	for _, it := range resp.Data {
		record := domain.HistoryRecord{
			ID:             identifier(it.ID),
			Filename:       it.Filename,
			WorkType:       it.WorkType,
			SoilType:       it.SoilType,
			Volume:         optionalNumber(it.Volume),
			Depth:          optionalNumber(it.Depth),
			Confidence:     number(it.Confidence),
			RisksCount:     int(number(it.RisksCount)),
			EstimatedTotal: optionalNumber(it.EstimatedTotal),
			Summary:        it.Summary,
			CreatedAt:      parseTimestamp(it.DateCreated),
		}
		if it.ClientID != nil {
			record.ClientID = *it.ClientID
		}
		records = append(records, record)
	}
	return records, nil
}

// parseTimestamp accepts both zoned and naive Directus timestamps.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
