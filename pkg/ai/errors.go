package ai

import (
	"fmt"
	"net/http"
)

// ConnectionError reports that the model endpoint could not be reached.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("model endpoint unreachable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// UpstreamError reports a non-2xx answer from the model endpoint.
type UpstreamError struct {
	StatusCode int
	Err        error
}

// Status renders the HTTP status as "<code> <text>".
func (e *UpstreamError) Status() string {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		return fmt.Sprintf("%d", e.StatusCode)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, text)
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("model endpoint returned %s", e.Status())
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ProtocolError reports a 2xx answer whose envelope lacks choices or message content.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid model response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid model response: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
