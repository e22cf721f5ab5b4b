package export

import "strings"

// Style is the named paragraph style applied in the output document.
type Style string

const (
	StyleNormal   Style = "Normal"
	StyleHeading1 Style = "Heading1"
	StyleHeading2 Style = "Heading2"
	StyleHeading3 Style = "Heading3"
)

// Alignment is the horizontal paragraph alignment.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignJustify Alignment = "both"
)

// ListKind marks list paragraphs.
type ListKind int

const (
	ListNone ListKind = iota
	ListBullet
	ListDecimal
)

// Run is a span of text sharing one formatting, or a line break.
type Run struct {
	Text      string `json:"text,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Break     bool   `json:"break,omitempty"`
}

// Paragraph is one paragraph of the output document.
type Paragraph struct {
	Kind  Kind      `json:"kind"`
	Style Style     `json:"style"`
	Align Alignment `json:"align"`
	List  ListKind  `json:"list,omitempty"`
	// ListID groups the items of one ordered list so numbering restarts per list.
	ListID int   `json:"list_id,omitempty"`
	Runs   []Run `json:"runs,omitempty"`
}

// Text returns the paragraph's text with breaks as newlines.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		if r.Break {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// IsEmpty reports whether the paragraph has no visible text.
func (p Paragraph) IsEmpty() bool {
	return strings.TrimSpace(p.Text()) == ""
}
