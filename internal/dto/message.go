package dto

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries the user-facing error text.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
