package errors

import "net/http"

var ErrDuplicateUser = &Exception{
	Message:    "email or username is already registered",
	StatusCode: http.StatusConflict,
}
