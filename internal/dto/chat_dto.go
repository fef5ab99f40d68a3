package dto

// ChatRequest is the inbound question payload for both the REST endpoint and
// the websocket channel.
type ChatRequest struct {
	Message string `json:"message" validate:"required,min=1,max=2000"`
}

// ChatResponse carries the generated answer back to the client.
type ChatResponse struct {
	Reply         string `json:"reply"`
	Intent        string `json:"intent"`
	Role          string `json:"role"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// QueryLogQuery filters the admin query log listing.
type QueryLogQuery struct {
	Page     int    `validate:"omitempty,min=1"`
	PageSize int    `validate:"omitempty,min=1,max=100"`
	Role     string `validate:"omitempty,oneof=guest student teacher admin"`
	Intent   string `validate:"omitempty,oneof=person teacher_subject program_info student_list student_count document"`
	Denied   *bool
}
