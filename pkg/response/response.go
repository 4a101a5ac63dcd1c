// Package response defines the JSON envelope used by all API responses.
package response

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var EmptyRequestBodyResponse = Response{
	Status:  StatusError,
	Message: "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:  StatusError,
	Message: "Invalid request body.",
}

var ResourceNotFoundResponse = Response{
	Status:  StatusError,
	Message: "The requested resource was not found.",
}

var ServerErrorResponse = Response{
	Status:  StatusError,
	Message: "An internal server error occurred. Please try again later.",
}

type Response struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Data    any      `json:"data,omitempty"`
}

func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

func ErrorResponse(msg string, details ...string) Response {
	return Response{
		Status:  StatusError,
		Message: msg,
		Details: details,
	}
}

// ValidationErrorResponse converts validator errors into a response listing
// the failed fields.
func ValidationErrorResponse(err error) Response {
	resp := Response{
		Status:  StatusError,
		Message: "Request validation failed.",
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			resp.Details = append(resp.Details,
				fmt.Sprintf("Invalid value for %q field.", fieldErr.Field()))
		}
	}

	return resp
}
