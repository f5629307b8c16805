package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ProjectParameters is the structured record extracted from a document.
// Numeric fields hold bare numbers; units are stripped during extraction.
type ProjectParameters struct {
	// WorkType is the kind of work, e.g. sheet piling or pile pressing. Required.
	WorkType string `json:"work_type"`

	// Volume is the amount of work (tonnes for sheet piles, metres for drilling).
	Volume *float64 `json:"volume"`

	// SoilType describes the soil conditions.
	SoilType *string `json:"soil_type"`

	// RequiredProfile is the sheet pile profile, e.g. "Л5-УМ".
	RequiredProfile *string `json:"required_profile"`

	// Depth is the installation depth in metres.
	Depth *float64 `json:"depth"`

	// GroundwaterLevel is the groundwater depth below ground in metres.
	// Surveys write it as a negative mark ("УГВ -1.5 м"); it is stored positive.
	GroundwaterLevel *float64 `json:"groundwater_level"`

	// SpecialConditions lists constraints such as nearby buildings. Never nil after extraction.
	SpecialConditions []string `json:"special_conditions"`
}

// Summary returns the lowercased "work soil profile" string used for keyword matching.
func (p ProjectParameters) Summary() string {
	return strings.ToLower(p.WorkType + " " + deref(p.SoilType) + " " + deref(p.RequiredProfile))
}

// JSON renders the parameters for inclusion in a prompt.
func (p ProjectParameters) JSON() string {
	data, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Clone returns a deep copy of p.
func (p ProjectParameters) Clone() ProjectParameters {
	c := p
	c.Volume = clonePtr(p.Volume)
	c.SoilType = clonePtr(p.SoilType)
	c.RequiredProfile = clonePtr(p.RequiredProfile)
	c.Depth = clonePtr(p.Depth)
	c.GroundwaterLevel = clonePtr(p.GroundwaterLevel)
	c.SpecialConditions = cloneSlice(p.SpecialConditions)
	return c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// cloneSlice copies s, keeping nil and empty distinct for JSON output.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SanitizeNumber coerces a loosely typed model value into a bare number.
// Numbers pass through. Strings yield their first number: units are
// dropped, a decimal comma becomes a point, digit groups separated by
// spaces are joined and a range such as "10-12 м" gives its lower bound.
// Anything else yields nil.
func SanitizeNumber(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return SanitizeNumber(string(n))
		}
		return finite(f)
	case string:
		return parseStripped(n)
	default:
		return nil
	}
}

// GroundwaterDepth sanitises a groundwater value and drops its sign.
func GroundwaterDepth(v any) *float64 {
	f := SanitizeNumber(v)
	if f == nil {
		return nil
	}
	depth := math.Abs(*f)
	return &depth
}

func parseStripped(s string) *float64 {
	runes := []rune(joinDigitGroups(strings.ReplaceAll(s, ",", ".")))

	start := -1
	for i, r := range runes {
		if isDigit(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	end := start
	for end < len(runes) && isDigit(runes[end]) {
		end++
	}
	if end+1 < len(runes) && runes[end] == '.' && isDigit(runes[end+1]) {
		end++
		for end < len(runes) && isDigit(runes[end]) {
			end++
		}
	}
	// A dash directly after a number separates a range and is not a sign.
	if start > 0 && (runes[start-1] == '-' || runes[start-1] == '+') &&
		(start == 1 || !isDigit(runes[start-2])) {
		start--
	}

	f, err := strconv.ParseFloat(string(runes[start:end]), 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

// joinDigitGroups removes thousands separators: a space between a digit
// and exactly three more digits ("1 500 т" becomes "1500 т").
func joinDigitGroups(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if isGroupSpace(r) && i > 0 && isDigit(runes[i-1]) && isThousands(runes[i+1:]) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isThousands(rest []rune) bool {
	if len(rest) < 3 {
		return false
	}
	for _, r := range rest[:3] {
		if !isDigit(r) {
			return false
		}
	}
	return len(rest) == 3 || !isDigit(rest[3])
}

func isGroupSpace(r rune) bool {
	return r == ' ' || r == '\u00a0' || r == '\u202f'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
