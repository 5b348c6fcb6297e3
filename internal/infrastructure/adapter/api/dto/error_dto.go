package dto

// ErrorResponse is the standard error body returned by the webhook API
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
