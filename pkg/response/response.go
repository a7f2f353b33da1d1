package response

import (
	"backend/pkg/apperror"
	"backend/pkg/pagination"
)

// Response represents a standard API response format
type Response struct {
	Status     string           `json:"status"`      // "success" or "error"
	StatusCode int              `json:"status_code"` // HTTP status code
	Data       interface{}      `json:"data,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// SuccessWithPagination returns a success response with a pagination block
func SuccessWithPagination(statusCode int, data interface{}, meta pagination.Meta) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
		Pagination: &meta,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError maps a service error to an error response using the apperror
// taxonomy; non-domain errors surface as 500
func FromError(err error) (int, Response) {
	status := apperror.StatusOf(err)
	return status, Error(status, err.Error())
}
