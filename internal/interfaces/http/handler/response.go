package handler

import "github.com/projectmgmt/backend/internal/interfaces/http/dto"

// Swagger-only shapes. Resource endpoints answer with the bare document;
// the /system endpoints wrap theirs.

// APIResponse is the envelope around /system payloads
type APIResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data"`
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
