package conversation

// ListMessagesOptions provides filtering options for listing messages.
type ListMessagesOptions struct {
	ProjectID string
	Limit     int
	Offset    int
}
