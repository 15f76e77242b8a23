package dto

// Response is the uniform envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// OK wraps data in a success envelope.
func OK(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// Fail wraps an error message in a failure envelope.
func Fail(message string) Response {
	return Response{Success: false, Message: message, Data: nil}
}
