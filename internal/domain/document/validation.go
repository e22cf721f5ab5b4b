package document

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// ValidateUpload validates an upload request.
func ValidateUpload(req UploadRequest) error {
	if len(req.Files) == 0 {
		return ErrNoFiles
	}
	for _, f := range req.Files {
		if strings.TrimSpace(f.Name) == "" {
			return ErrInvalidInput
		}
	}
	return nil
}

// ValidateCreateInput validates fields required to create a document.
func ValidateCreateInput(req CreateRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return ErrInvalidInput
	}
	return nil
}

// DetectMimeType resolves a file's MIME type from its declared type, its
// extension, and finally its leading bytes.
func DetectMimeType(name, declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return baseType(declared)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return MimeMarkdown
	case ".txt":
		return MimePlain
	case ".html", ".htm":
		return MimeHTML
	}
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return baseType(byExt)
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	return baseType(http.DetectContentType(data))
}

// IsEditable reports whether documents of this MIME type carry HTML content.
func IsEditable(mimeType string) bool {
	switch baseType(mimeType) {
	case MimeHTML, MimePlain, MimeMarkdown:
		return true
	}
	return false
}

func baseType(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.TrimSpace(mimeType)
}
