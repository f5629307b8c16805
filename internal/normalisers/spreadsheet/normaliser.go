// Package spreadsheet provides a normaliser for Excel workbooks.
package spreadsheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser renders every sheet of a workbook as tab-separated text.
type Normaliser struct{}

// New creates a new spreadsheet normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kind returns the source kind this normaliser produces.
func (n *Normaliser) Kind() domain.SourceKind {
	return domain.SourceKindSpreadsheet
}

// Extensions returns the handled file extensions.
func (n *Normaliser) Extensions() []string {
	return []string{".xlsx", ".xls"}
}

// Normalise reads all sheets in workbook order. Legacy BIFF workbooks
// (.xls) are read with extrame/xls, everything else with excelize.
func (n *Normaliser) Normalise(ctx context.Context, filename string, data []byte) (*domain.NormalizedDocument, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xls") {
		return normaliseLegacy(ctx, filename, data)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.DocumentFormatError{Filename: filename, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	parts := make([]domain.DocumentPart, 0, len(sheets))
	var full strings.Builder
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &domain.DocumentFormatError{Filename: filename, Err: fmt.Errorf("sheet %q: %w", sheet, err)}
		}
		text := renderRows(rows)
		fmt.Fprintf(&full, "\n--- Sheet: %s ---\n", sheet)
		full.WriteString(text)
		parts = append(parts, domain.DocumentPart{Label: sheet, Text: text})
	}

	meta := domain.DocumentMetadata{
		Filename: filename,
		Kind:     domain.SourceKindSpreadsheet,
		Sheets:   sheets,
	}
	if props, err := f.GetDocProps(); err == nil && props != nil {
		meta.Title = strings.TrimSpace(props.Title)
		meta.Author = strings.TrimSpace(props.Creator)
	}

	return normalisers.Finalise(&domain.NormalizedDocument{
		FullText: full.String(),
		Parts:    parts,
		Metadata: meta,
	}), nil
}

var (
	errNoWorkbook  = errors.New("no workbook stream")
	errNotCompound = errors.New("not an OLE2 compound document")

	// compoundMagic opens every OLE2 container; a header sector is 512 bytes.
	compoundMagic = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}
)

// normaliseLegacy renders a BIFF workbook with the same sheet markers.
func normaliseLegacy(ctx context.Context, filename string, data []byte) (*domain.NormalizedDocument, error) {
	sheets, err := readLegacySheets(data)
	if err != nil {
		return nil, &domain.DocumentFormatError{Filename: filename, Err: err}
	}

	parts := make([]domain.DocumentPart, 0, len(sheets))
	names := make([]string, 0, len(sheets))
	var full strings.Builder
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := renderRows(sheet.rows)
		fmt.Fprintf(&full, "\n--- Sheet: %s ---\n", sheet.name)
		full.WriteString(text)
		parts = append(parts, domain.DocumentPart{Label: sheet.name, Text: text})
		names = append(names, sheet.name)
	}

	return normalisers.Finalise(&domain.NormalizedDocument{
		FullText: full.String(),
		Parts:    parts,
		Metadata: domain.DocumentMetadata{
			Filename: filename,
			Kind:     domain.SourceKindSpreadsheet,
			Sheets:   names,
		},
	}), nil
}

type legacySheet struct {
	name string
	rows [][]string
}

// readLegacySheets decodes every sheet. The BIFF reader panics on some
// malformed containers, so panics are reported as format errors.
func readLegacySheets(data []byte) (sheets []legacySheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("corrupt workbook: %v", r)
		}
	}()

	if len(data) < 512 || !bytes.HasPrefix(data, compoundMagic) {
		return nil, errNotCompound
	}

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil {
		return nil, errNoWorkbook
	}

	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			var cells []string
			for c := row.FirstCol(); c <= row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, trimTrailing(cells))
		}
		sheets = append(sheets, legacySheet{name: sheet.Name, rows: rows})
	}
	return sheets, nil
}

func trimTrailing(cells []string) []string {
	for len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

// renderRows joins cells with tabs and rows with newlines, skipping blank rows.
func renderRows(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
