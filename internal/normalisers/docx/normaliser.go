// Package docx provides a normaliser for Word (OOXML) documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	documentPart   = "word/document.xml"
	corePropsPart  = "docProps/core.xml"
	maxPartBytes   = 64 << 20
	wordprocessing = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

var errNoDocumentPart = errors.New("missing " + documentPart)

// Normaliser extracts paragraph and table text from .docx files.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kind returns the source kind this normaliser produces.
func (n *Normaliser) Kind() domain.SourceKind {
	return domain.SourceKindWord
}

// Extensions returns the handled file extensions.
func (n *Normaliser) Extensions() []string {
	return []string{".docx"}
}

// Normalise reads the main document part. Table cells are tab separated and
// table rows end a line, so tabular specifications survive as text.
func (n *Normaliser) Normalise(ctx context.Context, filename string, data []byte) (*domain.NormalizedDocument, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &domain.DocumentFormatError{Filename: filename, Err: err}
	}

	body, err := readPart(reader, documentPart)
	if err != nil {
		return nil, &domain.DocumentFormatError{Filename: filename, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := extractText(body)
	if err != nil {
		return nil, &domain.DocumentFormatError{Filename: filename, Err: err}
	}

	meta := domain.DocumentMetadata{Filename: filename, Kind: domain.SourceKindWord}
	if core, err := readPart(reader, corePropsPart); err == nil {
		meta.Title, meta.Author = parseCoreProps(core)
	}

	return normalisers.Finalise(&domain.NormalizedDocument{
		FullText: text,
		Metadata: meta,
	}), nil
}

// readPart returns the bytes of the named archive member.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(io.LimitReader(rc, maxPartBytes))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return content, nil
	}
	if name == documentPart {
		return nil, errNoDocumentPart
	}
	return nil, domain.ErrNotFound
}

// extractText walks the WordprocessingML token stream.
func extractText(content []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))

	var (
		out    strings.Builder
		line   strings.Builder
		inText bool
		tables int
	)
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			out.WriteString(s)
			out.WriteByte('\n')
		}
		line.Reset()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordprocessing {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				line.WriteByte('\t')
			case "br", "cr":
				line.WriteByte(' ')
			case "tbl":
				flush()
				tables++
			}
		case xml.EndElement:
			if t.Name.Space != wordprocessing {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				// Paragraphs inside a cell stay on the row's line.
				if tables == 0 {
					flush()
				} else {
					line.WriteByte(' ')
				}
			case "tc":
				trimmed := strings.TrimRight(line.String(), " ")
				line.Reset()
				line.WriteString(trimmed)
				line.WriteByte('\t')
			case "tr":
				flush()
			case "tbl":
				tables--
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}
	flush()
	return strings.TrimSpace(out.String()), nil
}

type coreProps struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
}

// parseCoreProps returns the title and author from docProps/core.xml.
func parseCoreProps(content []byte) (title, author string) {
	var props coreProps
	if err := xml.Unmarshal(content, &props); err != nil {
		return "", ""
	}
	return strings.TrimSpace(props.Title), strings.TrimSpace(props.Creator)
}
