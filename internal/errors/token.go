package errors

import "net/http"

var ErrMissingToken = &Exception{
	Message:    "access denied: bearer token not provided",
	StatusCode: http.StatusUnauthorized,
}

var ErrInvalidToken = &Exception{
	Message:    "invalid or expired token",
	StatusCode: http.StatusUnauthorized,
}
