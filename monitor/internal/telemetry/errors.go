package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransportError reports a connection failure or timeout.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("telemetry %s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the request hit its deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// ResponseError reports a non-2xx status from the Telemetry API.
type ResponseError struct {
	Op     string
	Status int
	// Message is the "error" field of the response body, when present.
	Message string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("telemetry %s: unexpected status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("telemetry %s: unexpected status %d", e.Op, e.Status)
}

// ParseError reports a response body that does not match the expected shape.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("telemetry %s: parse: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Kind returns "transport", "response", "parse" or "other" for err.
// Used as a metrics label and in surfaced messages.
func Kind(err error) string {
	var te *TransportError
	var re *ResponseError
	var pe *ParseError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &te):
		return "transport"
	case errors.As(err, &re):
		return "response"
	case errors.As(err, &pe):
		return "parse"
	default:
		return "other"
	}
}
