package response

// MessageResponse is returned by endpoints that only acknowledge an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// DeletedResponse reports how many records a bulk delete removed.
type DeletedResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
	From         string `json:"from,omitempty"`
	To           string `json:"to,omitempty"`
}
