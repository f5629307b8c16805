package domain

import "time"

// RiskFinding is one discrete engineering risk.
type RiskFinding struct {
	// Risk describes the threat.
	Risk string `json:"risk"`

	// Impact encodes a severity tier plus the consequence.
	Impact string `json:"impact"`
}

// InventoryItem is a priced stock item matched to the project.
type InventoryItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock float64 `json:"stock"`
}

// EquipmentItem is a machine matched to the project's work type.
type EquipmentItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

// AuditRequest is one uploaded document submitted for audit.
type AuditRequest struct {
	// Filename selects the parser by extension.
	Filename string

	// Content is the raw uploaded bytes.
	Content []byte

	// ClientID identifies the caller for quota accounting. May be empty.
	ClientID string
}

// AuditResult is the complete output of one audit.
// A cached AuditResult is returned verbatim for repeat uploads.
type AuditResult struct {
	Parameters ProjectParameters `json:"parsed_data"`
	Risks      []RiskFinding     `json:"risks"`
	Summary    string            `json:"technical_summary"`
	Confidence float64           `json:"confidence_score"`
	Questions  []string          `json:"clarifying_questions"`

	Inventory      []InventoryItem `json:"matched_shpunts"`
	Equipment      []EquipmentItem `json:"recommended_machinery"`
	EstimatedTotal *float64        `json:"estimated_total"`

	// ContentHash is the hex SHA-256 of the uploaded bytes.
	ContentHash string `json:"content_hash,omitempty"`
}

// Clone returns a deep copy that shares no slices or pointers with r.
func (r *AuditResult) Clone() *AuditResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Parameters = r.Parameters.Clone()
	c.Risks = cloneSlice(r.Risks)
	c.Questions = cloneSlice(r.Questions)
	c.Inventory = cloneSlice(r.Inventory)
	c.Equipment = cloneSlice(r.Equipment)
	c.EstimatedTotal = clonePtr(r.EstimatedTotal)
	return &c
}

// HistoryRecord is the denormalised audit row kept for a client's history.
type HistoryRecord struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	ClientID       string    `json:"client_id,omitempty"`
	ContentHash    string    `json:"content_hash"`
	WorkType       string    `json:"work_type"`
	SoilType       *string   `json:"soil_type"`
	Volume         *float64  `json:"volume"`
	Depth          *float64  `json:"depth"`
	Confidence     float64   `json:"confidence_score"`
	RisksCount     int       `json:"risks_count"`
	EstimatedTotal *float64  `json:"estimated_total"`
	Summary        string    `json:"technical_summary"`
	CreatedAt      time.Time `json:"date_created"`
}

// NewHistoryRecord denormalises a completed audit.
func NewHistoryRecord(id, filename, clientID string, result *AuditResult, now time.Time) HistoryRecord {
	return HistoryRecord{
		ID:             id,
		Filename:       filename,
		ClientID:       clientID,
		ContentHash:    result.ContentHash,
		WorkType:       result.Parameters.WorkType,
		SoilType:       result.Parameters.SoilType,
		Volume:         result.Parameters.Volume,
		Depth:          result.Parameters.Depth,
		Confidence:     result.Confidence,
		RisksCount:     len(result.Risks),
		EstimatedTotal: result.EstimatedTotal,
		Summary:        result.Summary,
		CreatedAt:      now,
	}
}

// Proposal is a commercial offer assembled from an audit.
type Proposal struct {
	Parameters ProjectParameters `json:"parsed_data"`
	Inventory  []InventoryItem   `json:"matched_shpunts"`
	Equipment  []EquipmentItem   `json:"recommended_machinery"`
	Shifts     int               `json:"estimated_shifts,omitempty"`
	ShiftRate  float64           `json:"shift_rate,omitempty"`
}

// CostLine is one line of a proposal estimate.
type CostLine struct {
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// CostEstimate is the priced breakdown of a proposal.
type CostEstimate struct {
	Lines []CostLine `json:"lines"`
	Total *float64   `json:"total"`
}
