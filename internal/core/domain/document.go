package domain

// SourceKind identifies which parser produced a NormalizedDocument.
type SourceKind string

// Supported source kinds.
const (
	SourceKindPDF         SourceKind = "pdf"
	SourceKindSpreadsheet SourceKind = "spreadsheet"
	SourceKindWord        SourceKind = "docx"
	SourceKindText        SourceKind = "text"
)

// SectionKey is a topic from the fixed section vocabulary.
type SectionKey string

// Section vocabulary, in detection order.
const (
	SectionGeology      SectionKey = "geology"
	SectionConstruction SectionKey = "construction"
	SectionHydrology    SectionKey = "hydrology"
	SectionProjectInfo  SectionKey = "project_info"
)

// SectionKeys returns the section vocabulary in detection order.
func SectionKeys() []SectionKey {
	return []SectionKey{SectionGeology, SectionConstruction, SectionHydrology, SectionProjectInfo}
}

// DocumentMetadata describes the uploaded file.
type DocumentMetadata struct {
	// Filename is the name the file was uploaded with.
	Filename string `json:"filename"`

	// Kind is the parser that read the file.
	Kind SourceKind `json:"type"`

	// Pages is the page count for PDF input.
	Pages int `json:"pages,omitempty"`

	// Sheets lists sheet names for spreadsheet input, in workbook order.
	Sheets []string `json:"sheets,omitempty"`

	// Title and Author come from document properties when present.
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
}

// DocumentPart is the text of one page or one sheet.
type DocumentPart struct {
	// Label is "Page N" or the sheet name.
	Label string `json:"label"`

	// Text is the extracted content of the part.
	Text string `json:"text"`
}

// NormalizedDocument is the uniform representation of an uploaded file.
// It is created once per upload and never mutated.
type NormalizedDocument struct {
	// FullText is all extractable text, page or sheet delimited.
	FullText string `json:"full_text"`

	// Sections maps a topic to the best-matching excerpt of FullText.
	Sections map[SectionKey]string `json:"sections"`

	// Parts holds per-page or per-sheet content. Empty for plain text.
	Parts []DocumentPart `json:"structured,omitempty"`

	// Metadata describes the source file.
	Metadata DocumentMetadata `json:"metadata"`
}

// Section returns the excerpt for key, or fallback when the section was not detected.
func (d *NormalizedDocument) Section(key SectionKey, fallback string) string {
	if d == nil {
		return fallback
	}
	if s, ok := d.Sections[key]; ok && s != "" {
		return s
	}
	return fallback
}
