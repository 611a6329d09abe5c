// Package corsgin adapts a [cors.Middleware] to the Gin web framework.
//
// Usage:
//
//	router.Use(corsgin.New(corsMw, corsgin.WithLogger(log)))
//
// Register the resulting handler before any handler that may reject a
// request (e.g. authentication), so that rejections carry CORS headers too.
package corsgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/taisey/cors"
)

// ErrorBody is the JSON body of the responses produced by [JSONTranslator].
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure to the client.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type options struct {
	logger     *slog.Logger
	translator cors.Translator
}

// An Option customizes the handler returned by [New].
type Option func(*options)

// WithLogger sets the logger on which recovered panics and failures to
// write responses are reported.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithTranslator sets the translator applied to panics and to errors that
// handlers attach to the context without answering the request.
// The default is [JSONTranslator].
func WithTranslator(t cors.Translator) Option {
	return func(o *options) {
		if t != nil {
			o.translator = t
		}
	}
}

// New returns a Gin handler that applies m to the rest of the chain.
//
// Preflight requests are answered, and the chain aborted, right away.
// For other requests, CORS headers are set before the chain runs, so that
// responses written by later handlers (including aborted ones) carry them.
// A panic, or an error left in [gin.Context.Errors] by a chain that wrote
// nothing, is translated into a response that carries CORS headers too.
// If the translator fails, New panics with its error.
func New(m *cors.Middleware, opts ...Option) gin.HandlerFunc {
	o := options{
		logger:     slog.New(slog.DiscardHandler),
		translator: JSONTranslator,
	}
	for _, opt := range opts {
		opt(&o)
	}
	translate := m.Translator(o.translator)
	return func(c *gin.Context) {
		r := c.Request
		if cors.IsPreflight(r.Method, r.Header) {
			if res := m.Preflight(r.Header); res != nil {
				o.send(c, res)
				c.Abort()
				return
			}
			c.Next()
			return
		}
		m.Inject(r.Method, r.Header, c.Writer.Header())

		if perr := next(c); perr != nil {
			o.logger.Error("panic recovered",
				"error", perr.Value,
				"path", r.URL.Path,
				"method", r.Method,
				"stack", string(perr.Stack),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			o.respond(c, translate, perr)
			return
		}
		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		o.respond(c, translate, c.Errors.Last().Err)
	}
}

// next runs the rest of the chain and turns a panic into a *cors.PanicError.
func next(c *gin.Context) (perr *cors.PanicError) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if v == http.ErrAbortHandler {
			panic(v)
		}
		perr = &cors.PanicError{Value: v, Stack: debug.Stack()}
	}()
	c.Next()
	return nil
}

func (o *options) respond(c *gin.Context, translate cors.Translator, err error) {
	res, terr := translate(c.Request, err)
	if terr != nil {
		panic(terr)
	}
	o.send(c, res)
	c.Abort()
}

func (o *options) send(c *gin.Context, res *cors.Response) {
	maps.Copy(c.Writer.Header(), res.Header)
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.Status(status)
	if len(res.Body) == 0 {
		c.Writer.WriteHeaderNow()
		return
	}
	if _, err := c.Writer.Write(res.Body); err != nil {
		o.logger.Debug("failed to write response",
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
}

// JSONTranslator translates [*cors.StatusError] and [*cors.ResponseError]
// like [cors.DefaultTranslator] does, but any other failure into an
// Internal Server Error response whose body does not expose internal details.
func JSONTranslator(r *http.Request, err error) (*cors.Response, error) {
	var (
		serr *cors.StatusError
		rerr *cors.ResponseError
	)
	if errors.As(err, &serr) || errors.As(err, &rerr) {
		return cors.DefaultTranslator(r, err)
	}
	body, jerr := json.Marshal(ErrorBody{
		Error: ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: "An unexpected error occurred",
		},
	})
	if jerr != nil {
		return nil, jerr
	}
	res := cors.Response{
		Status: http.StatusInternalServerError,
		Header: http.Header{"Content-Type": {"application/json; charset=utf-8"}},
		Body:   body,
	}
	return &res, nil
}
