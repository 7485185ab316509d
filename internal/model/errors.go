package model

import "fmt"

// HTTPError reports a non-success response from the score service.
// Message holds the service's {"error": ...} text when the body carried one.
type HTTPError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *HTTPError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
