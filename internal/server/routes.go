package server

import (
	"errors"
	"net/http"

	"github.com/taisey/cors"
)

// Demo handlers, one per way a request can end.

func hello(*http.Request) (*cors.Response, error) {
	res := cors.Response{
		Header: http.Header{"Content-Type": {"text/plain; charset=utf-8"}},
		Body:   []byte("Hello, World!"),
	}
	return &res, nil
}

var errBoom = errors.New("boom")

func statusError(*http.Request) (*cors.Response, error) {
	return nil, &cors.StatusError{Status: http.StatusInternalServerError}
}

func responseError(*http.Request) (*cors.Response, error) {
	return nil, &cors.ResponseError{Response: errorResponse()}
}

func errorResponse() *cors.Response {
	return &cors.Response{
		Status: http.StatusInternalServerError,
		Header: http.Header{"Content-Type": {"text/plain; charset=utf-8"}},
		Body:   []byte("response error"),
	}
}

func panicking(*http.Request) (*cors.Response, error) {
	panic(errBoom)
}

// failBefore returns a decorator that fails with err without ever calling
// the handler it decorates, e.g. as an authentication layer would.
func failBefore(err error) func(cors.Handler) cors.Handler {
	return func(cors.Handler) cors.Handler {
		return cors.HandlerFunc(func(*http.Request) (*cors.Response, error) {
			return nil, err
		})
	}
}

func legacyHello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Hello from net/http!"))
}
