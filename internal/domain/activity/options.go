package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	ProjectID  string
	DocumentID *string
	Status     *Status
	Limit      int
	Offset     int
}
