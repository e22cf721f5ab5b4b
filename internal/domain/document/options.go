package document

// ListDocumentsOptions provides filtering options for listing documents.
type ListDocumentsOptions struct {
	ProjectID    string
	CollectionID *string
	Limit        int
	Offset       int
}
