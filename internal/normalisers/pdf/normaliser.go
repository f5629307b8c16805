// Package pdf provides a normaliser for PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Document is the subset of a parsed PDF the normaliser reads.
type Document interface {
	NumPage() int
	PageText(n int) (string, error)
	Info() (title, author string)
}

// Opener parses raw bytes into a Document.
type Opener func(data []byte) (Document, error)

// Normaliser extracts per-page text from PDF files.
type Normaliser struct {
	open Opener
}

// New creates a PDF normaliser backed by ledongthuc/pdf.
func New() *Normaliser {
	return &Normaliser{open: openPDF}
}

// NewWithOpener creates a normaliser with a custom opener (for testing).
func NewWithOpener(open Opener) *Normaliser {
	return &Normaliser{open: open}
}

// Kind returns the source kind this normaliser produces.
func (n *Normaliser) Kind() domain.SourceKind {
	return domain.SourceKindPDF
}

// Extensions returns the handled file extensions.
func (n *Normaliser) Extensions() []string {
	return []string{".pdf"}
}

// Normalise extracts text page by page. Each page is preceded by a
// "--- Page N ---" marker in the full text.
func (n *Normaliser) Normalise(ctx context.Context, filename string, data []byte) (doc *domain.NormalizedDocument, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &domain.DocumentFormatError{Filename: filename, Err: fmt.Errorf("pdf parser: %v", r)}
		}
	}()

	parsed, err := n.open(data)
	if err != nil {
		return nil, &domain.DocumentFormatError{Filename: filename, Err: err}
	}

	var full strings.Builder
	pages := parsed.NumPage()
	parts := make([]domain.DocumentPart, 0, pages)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := parsed.PageText(i)
		if err != nil {
			return nil, &domain.DocumentFormatError{Filename: filename, Err: fmt.Errorf("page %d: %w", i, err)}
		}
		fmt.Fprintf(&full, "\n--- Page %d ---\n", i)
		full.WriteString(text)
		parts = append(parts, domain.DocumentPart{Label: fmt.Sprintf("Page %d", i), Text: text})
	}

	title, author := parsed.Info()
	return normalisers.Finalise(&domain.NormalizedDocument{
		FullText: full.String(),
		Parts:    parts,
		Metadata: domain.DocumentMetadata{
			Filename: filename,
			Kind:     domain.SourceKindPDF,
			Pages:    pages,
			Title:    strings.TrimSpace(title),
			Author:   strings.TrimSpace(author),
		},
	}), nil
}

// readerDocument adapts *pdf.Reader to Document.
type readerDocument struct {
	r *pdf.Reader
}

func openPDF(data []byte) (Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return readerDocument{r: r}, nil
}

func (d readerDocument) NumPage() int {
	return d.r.NumPage()
}

func (d readerDocument) PageText(n int) (string, error) {
	page := d.r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func (d readerDocument) Info() (title, author string) {
	info := d.r.Trailer().Key("Info")
	if info.IsNull() {
		return "", ""
	}
	return info.Key("Title").Text(), info.Key("Author").Text()
}
