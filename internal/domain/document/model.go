package document

import "time"

// MIME types the registry treats as editable HTML or text content.
const (
	MimeHTML     = "text/html"
	MimePlain    = "text/plain"
	MimeMarkdown = "text/markdown"
)

// Document is an uploaded or generated file with optional HTML content.
type Document struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	CollectionID *string   `json:"collection_id,omitempty"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type"`
	Date         time.Time `json:"date"`
	Content      string    `json:"content,omitempty"`
	IsReadOnly   bool      `json:"is_read_only"`
}

// Ref returns the listing view of the document.
func (d *Document) Ref() DocumentRef {
	return DocumentRef{
		ID:           d.ID,
		CollectionID: d.CollectionID,
		Name:         d.Name,
		Size:         d.Size,
		MimeType:     d.MimeType,
		Date:         d.Date,
		IsReadOnly:   d.IsReadOnly,
	}
}

// DocumentRef is a document without its content
type DocumentRef struct {
	ID           string    `json:"id"`
	CollectionID *string   `json:"collection_id,omitempty"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type"`
	Date         time.Time `json:"date"`
	IsReadOnly   bool      `json:"is_read_only"`
}

// File is one uploaded file.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}
