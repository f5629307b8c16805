package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestSanitizeNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"nil", nil, nil},
		{"float", 12.5, floatPtr(12.5)},
		{"float32", float32(2), floatPtr(2)},
		{"int", 7, floatPtr(7)},
		{"int64", int64(-3), floatPtr(-3)},
		{"json number", json.Number("4.25"), floatPtr(4.25)},
		{"units stripped", "150 тонн", floatPtr(150)},
		{"decimal comma", "2,5 м", floatPtr(2.5)},
		{"trailing dot", "12.", floatPtr(12)},
		{"no digits", "около", nil},
		{"empty", "", nil},
		{"nan", math.NaN(), nil},
		{"inf", math.Inf(1), nil},
		{"bool", true, nil},
		{"dotted version", "1.2.3", floatPtr(1.2)},
		{"range takes lower bound", "10-12 м", floatPtr(10)},
		{"range with en dash", "10–12 м", floatPtr(10)},
		{"range in words", "от 8 до 10 м", floatPtr(8)},
		{"negative mark", "УГВ -1.5 м", floatPtr(-1.5)},
		{"negative range", "-2-3", floatPtr(-2)},
		{"thousands space", "1 500 тонн", floatPtr(1500)},
		{"thousands nbsp", "2\u00a0350,5", floatPtr(2350.5)},
		{"separate numbers", "12 15", floatPtr(12)},
		{"signs only", "--", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeNumber(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestGroundwaterDepth(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"negative mark string", "-1.5 м", floatPtr(1.5)},
		{"negative number", -2.0, floatPtr(2)},
		{"positive", json.Number("3.2"), floatPtr(3.2)},
		{"absent", nil, nil},
		{"not a number", "не вскрыт", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroundwaterDepth(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestAuditResult_Clone(t *testing.T) {
	volume := 450.0
	orig := &AuditResult{
		Parameters: ProjectParameters{WorkType: "шпунт", Volume: &volume, SpecialConditions: []string{}},
		Risks:      []RiskFinding{{Risk: "Осадка"}},
		Questions:  nil,
	}

	c := orig.Clone()
	require.Equal(t, orig, c)
	assert.NotSame(t, orig.Parameters.Volume, c.Parameters.Volume)
	assert.NotNil(t, c.Parameters.SpecialConditions)
	assert.Nil(t, c.Questions)

	c.Risks[0].Risk = "changed"
	assert.Equal(t, "Осадка", orig.Risks[0].Risk)
	assert.Nil(t, (*AuditResult)(nil).Clone())
}

func TestProjectParameters_Summary(t *testing.T) {
	p := ProjectParameters{
		WorkType:        "Шпунтовое ограждение",
		SoilType:        strPtr("Суглинок"),
		RequiredProfile: strPtr("Л5-УМ"),
	}
	assert.Equal(t, "шпунтовое ограждение суглинок л5-ум", p.Summary())

	assert.Equal(t, "сваи  ", ProjectParameters{WorkType: "Сваи"}.Summary())
}

func TestProjectParameters_JSON(t *testing.T) {
	p := ProjectParameters{WorkType: "сваи", Depth: floatPtr(12), SpecialConditions: []string{}}

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(p.JSON()), &got))
	assert.Equal(t, "сваи", got["work_type"])
	assert.Equal(t, 12.0, got["depth"])
	assert.Nil(t, got["volume"])
	assert.Equal(t, []any{}, got["special_conditions"])
}

func TestNewHistoryRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	total := 100.0
	result := &AuditResult{
		Parameters:     ProjectParameters{WorkType: "шпунт", Volume: floatPtr(10), SoilType: strPtr("песок")},
		Risks:          []RiskFinding{{Risk: "a", Impact: "b"}, {Risk: "c", Impact: "d"}},
		Summary:        "## Анализ",
		Confidence:     0.7,
		EstimatedTotal: &total,
		ContentHash:    "abc",
	}

	r := NewHistoryRecord("id-1", "tz.pdf", "client", result, now)

	assert.Equal(t, "id-1", r.ID)
	assert.Equal(t, "tz.pdf", r.Filename)
	assert.Equal(t, "client", r.ClientID)
	assert.Equal(t, "abc", r.ContentHash)
	assert.Equal(t, "шпунт", r.WorkType)
	assert.Equal(t, 2, r.RisksCount)
	assert.Equal(t, 0.7, r.Confidence)
	assert.Equal(t, &total, r.EstimatedTotal)
	assert.Equal(t, now, r.CreatedAt)
}
