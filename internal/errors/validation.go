package errors

import (
	"net/http"
	"strings"
)

func NewValidationError(messages ...string) *Exception {
	return &Exception{
		Message:    strings.Join(messages, "; "),
		StatusCode: http.StatusBadRequest,
		Errors:     messages,
	}
}

func IsValidation(err error) bool {
	e, ok := AsException(err)
	return ok && len(e.Errors) > 0
}
