package cors

import (
	"bytes"
	"errors"
	"maps"
	"net/http"
	"runtime/debug"
)

// A Response is the outcome of a [Handler] that did not fail, or the
// result of translating a failure.
type Response struct {
	Status int // 0 means 200
	Header http.Header
	Body   []byte
}

// Clone returns a deep copy of res.
func (res *Response) Clone() *Response {
	if res == nil {
		return nil
	}
	return &Response{
		Status: res.Status,
		Header: res.Header.Clone(),
		Body:   bytes.Clone(res.Body),
	}
}

// Send writes res to w. The fields of res.Header replace, by name, any
// header already present in w.Header.
func (res *Response) Send(w http.ResponseWriter) error {
	maps.Copy(w.Header(), res.Header)
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(res.Body) == 0 {
		return nil
	}
	_, err := w.Write(res.Body)
	return err
}

// normalize returns a shallow copy of res whose header the caller owns;
// handlers may thus return shared responses. The body is not copied.
func normalize(res *Response) *Response {
	if res == nil {
		return &Response{Status: http.StatusOK, Header: make(http.Header)}
	}
	cp := *res
	cp.Header = res.Header.Clone()
	if cp.Header == nil {
		cp.Header = make(http.Header)
	}
	return &cp
}

// A Handler handles a request. It either produces a response or fails;
// a nil *Response together with a nil error means an empty 200 response.
// The returned response is not modified by this package and may be shared
// across requests.
type Handler interface {
	Handle(r *http.Request) (*Response, error)
}

// The HandlerFunc type is an adapter to allow the use of ordinary functions
// as a [Handler].
type HandlerFunc func(r *http.Request) (*Response, error)

// Handle calls f(r).
func (f HandlerFunc) Handle(r *http.Request) (*Response, error) {
	return f(r)
}

// A Translator turns the failure of a [Handler] into a response.
// A non-nil error result means that no response could be produced;
// that error is then propagated as is.
type Translator func(r *http.Request, err error) (*Response, error)

// DefaultTranslator translates a [*StatusError] into an empty response with
// that status, a [*ResponseError] into a copy of its response, and any other
// error into an Internal Server Error response. It never fails.
func DefaultTranslator(_ *http.Request, err error) (*Response, error) {
	var (
		serr *StatusError
		rerr *ResponseError
	)
	switch {
	case errors.As(err, &serr):
		res := Response{
			Status: serr.Status,
			Header: make(http.Header),
		}
		return &res, nil
	case errors.As(err, &rerr) && rerr.Response != nil:
		return normalize(rerr.Response), nil
	default:
		const status = http.StatusInternalServerError
		res := Response{
			Status: status,
			Header: http.Header{"Content-Type": {"text/plain; charset=utf-8"}},
			Body:   []byte(http.StatusText(status)),
		}
		return &res, nil
	}
}

// handle calls h.Handle(r) and turns a panic into a *PanicError.
func handle(h Handler, r *http.Request) (res *Response, err error) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			res, err = nil, &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return h.Handle(r)
}

// HTTPHandler adapts h to the [http.Handler] interface.
// Failures of h (including panics) are translated by t, or by
// [DefaultTranslator] if t is nil. If t fails, the resulting
// http.Handler panics with t's error, thereby aborting the response.
func HTTPHandler(h Handler, t Translator) http.Handler {
	if t == nil {
		t = DefaultTranslator
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := handle(h, r)
		if err != nil {
			res, err = t(r, err)
			if err != nil {
				panic(err)
			}
		}
		// The client may be gone; there is no one left to report to.
		_ = normalize(res).Send(w)
	})
}

// FromHTTP adapts h to the [Handler] interface by buffering the response
// that h writes. A panic in h is left for the caller to recover.
func FromHTTP(h http.Handler) Handler {
	return HandlerFunc(func(r *http.Request) (*Response, error) {
		var buf responseBuffer
		h.ServeHTTP(&buf, r)
		return buf.response(), nil
	})
}

// responseBuffer is an http.ResponseWriter that retains everything
// written to it.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *responseBuffer) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}

func (b *responseBuffer) WriteHeader(status int) {
	if b.status != 0 {
		return
	}
	b.status = status
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	b.WriteHeader(http.StatusOK)
	return b.body.Write(p)
}

func (b *responseBuffer) response() *Response {
	res := Response{
		Status: b.status,
		Header: b.Header().Clone(),
	}
	if res.Status == 0 {
		res.Status = http.StatusOK
	}
	if b.body.Len() > 0 {
		res.Body = bytes.Clone(b.body.Bytes())
	}
	return &res
}
