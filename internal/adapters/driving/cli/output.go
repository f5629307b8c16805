package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
)

var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
)

// reportStyles renders an audit report. The zero value prints plain text.
type reportStyles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	High    lipgloss.Style
	Medium  lipgloss.Style
	Low     lipgloss.Style
}

func styledReport() reportStyles {
	return reportStyles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
		Heading: lipgloss.NewStyle().Bold(true).Underline(true),
		Label:   lipgloss.NewStyle().Foreground(colourMuted),
		Muted:   lipgloss.NewStyle().Foreground(colourMuted).Italic(true),
		High:    lipgloss.NewStyle().Foreground(colourError).Bold(true),
		Medium:  lipgloss.NewStyle().Foreground(colourWarning),
		Low:     lipgloss.NewStyle().Foreground(colourSuccess),
	}
}

func plainReport() reportStyles {
	s := lipgloss.NewStyle()
	return reportStyles{Title: s, Heading: s, Label: s, Muted: s, High: s, Medium: s, Low: s}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// renderReport writes a human-readable audit report.
func renderReport(w io.Writer, filename string, r *domain.AuditResult, st reportStyles) {
	fmt.Fprintln(w, st.Title.Render("Audit: "+filename))
	fmt.Fprintf(w, "%s %s\n\n", st.Label.Render("Confidence:"), confidenceStyle(r.Confidence, st).Render(formatPercent(r.Confidence)))

	fmt.Fprintln(w, st.Heading.Render("Parameters"))
	p := r.Parameters
	field(w, st, "Work type", p.WorkType)
	field(w, st, "Volume", formatFloat(p.Volume))
	field(w, st, "Soil", formatString(p.SoilType))
	field(w, st, "Profile", formatString(p.RequiredProfile))
	field(w, st, "Depth", formatFloat(p.Depth))
	field(w, st, "Groundwater", formatFloat(p.GroundwaterLevel))
	if len(p.SpecialConditions) > 0 {
		field(w, st, "Conditions", strings.Join(p.SpecialConditions, "; "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, st.Heading.Render("Risks"))
	if len(r.Risks) == 0 {
		fmt.Fprintln(w, st.Muted.Render("  none identified"))
	}
	for i, risk := range r.Risks {
		fmt.Fprintf(w, "  [%d] %s\n", i+1, risk.Risk)
		fmt.Fprintf(w, "      %s\n", impactStyle(risk.Impact, st).Render(risk.Impact))
	}
	fmt.Fprintln(w)

	if r.Summary != "" {
		fmt.Fprintln(w, st.Heading.Render("Summary"))
		fmt.Fprintln(w, strings.TrimSpace(r.Summary))
		fmt.Fprintln(w)
	}

	if len(r.Questions) > 0 {
		fmt.Fprintln(w, st.Heading.Render("Clarifying questions"))
		for i, q := range r.Questions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, q)
		}
		fmt.Fprintln(w)
	}

	if len(r.Inventory) > 0 || len(r.Equipment) > 0 {
		fmt.Fprintln(w, st.Heading.Render("Catalogue"))
		for _, item := range r.Inventory {
			fmt.Fprintf(w, "  %s  %s  %s\n", item.Name, st.Label.Render("price"), strconv.FormatFloat(item.Price, 'f', -1, 64))
		}
		for _, eq := range r.Equipment {
			fmt.Fprintf(w, "  %s  %s\n", eq.Name, st.Label.Render(eq.Category))
		}
		if r.EstimatedTotal != nil {
			field(w, st, "Estimate", strconv.FormatFloat(*r.EstimatedTotal, 'f', 2, 64))
		}
		fmt.Fprintln(w)
	}
}

func field(w io.Writer, st reportStyles, label, value string) {
	if value == "" {
		value = st.Muted.Render("not specified")
	}
	fmt.Fprintf(w, "  %-12s %s\n", st.Label.Render(label+":"), value)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 0, 64) + "%"
}

func confidenceStyle(v float64, st reportStyles) lipgloss.Style {
	switch {
	case v >= 0.75:
		return st.Low
	case v >= 0.5:
		return st.Medium
	default:
		return st.High
	}
}

// impactStyle picks a colour from the severity tier that leads the impact text.
func impactStyle(impact string, st reportStyles) lipgloss.Style {
	lower := strings.ToLower(impact)
	switch {
	case strings.HasPrefix(lower, "высок"), strings.HasPrefix(lower, "критич"), strings.HasPrefix(lower, "high"):
		return st.High
	case strings.HasPrefix(lower, "средн"), strings.HasPrefix(lower, "medium"):
		return st.Medium
	case strings.HasPrefix(lower, "низк"), strings.HasPrefix(lower, "low"):
		return st.Low
	default:
		return st.Label
	}
}
