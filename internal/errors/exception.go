package errors

import "errors"

type Exception struct {
	Message    string
	StatusCode int
	// Errors carries one message per failing field for validation failures.
	Errors []string
}

func (e *Exception) Error() string {
	return e.Message
}

// AsException unwraps err to an *Exception when it is one.
func AsException(err error) (*Exception, bool) {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
