package dto

// Response is the JSON envelope of every API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failed request
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail is one field-level validation failure
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return NewErrorResponseWithRequestID(code, message, "")
}

// NewErrorResponseWithRequestID creates an error response tagged with the
// request ID so clients can quote it
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse creates a VALIDATION_ERROR response listing
// the offending fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}
