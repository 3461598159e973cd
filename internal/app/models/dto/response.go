package dto

// APIResponse wraps every JSON body returned by the API
type APIResponse struct {
	Data  interface{}  `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// PaginationInfo describes a limit/offset window
type PaginationInfo struct {
	Limit   int  `json:"limit" example:"10"`
	Offset  int  `json:"offset" example:"0"`
	HasMore bool `json:"has_more" example:"true"`
}

// CountResponse is used for counters such as unread notifications
type CountResponse struct {
	Count int `json:"count" example:"3"`
}
