package cors

import (
	"fmt"
	"net/http"
)

// A StatusError ends the processing of a request early with the given
// status and an empty body.
type StatusError struct {
	Status int
}

func (err *StatusError) Error() string {
	return fmt.Sprintf("cors: status %d %s", err.Status, http.StatusText(err.Status))
}

// A ResponseError ends the processing of a request early with the given
// response.
type ResponseError struct {
	Response *Response
}

func (err *ResponseError) Error() string {
	status := http.StatusOK
	if err.Response != nil && err.Response.Status != 0 {
		status = err.Response.Status
	}
	return fmt.Sprintf("cors: response with status %d", status)
}

// A PanicError reports a panic recovered from a [Handler] or an
// [http.Handler].
type PanicError struct {
	Value any    // the value passed to panic
	Stack []byte // the stack of the panicking goroutine
}

func (err *PanicError) Error() string {
	return fmt.Sprintf("cors: handler panicked: %v", err.Value)
}

// Unwrap returns the panic value if it is an error, or nil otherwise.
func (err *PanicError) Unwrap() error {
	if e, ok := err.Value.(error); ok {
		return e
	}
	return nil
}
