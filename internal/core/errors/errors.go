package errors

const (
	HttpInternalError     = "internal_error"
	HttpInvalidQueryError = "invalid_query"
	HttpTitleNotFound     = "title_not_found"
	HttpEmptyHistoryError = "empty_history"
	HttpEmptyRangeError   = "empty_range"
)

// ErrorResponse is the error response body of the read API.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
