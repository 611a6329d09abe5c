// Package corsfiber adapts a [cors.Middleware] to the Fiber web framework.
//
// Fiber translates the errors returned by handlers with the application's
// ErrorHandler; New hands every failure of the chain to that error handler
// before it adds CORS headers, so that error responses carry them too.
// [ErrorHandler] is an error handler that understands [*cors.StatusError]
// and [*cors.ResponseError].
package corsfiber

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/taisey/cors"
)

// New returns a Fiber handler that applies m to the rest of the chain.
//
// Preflight requests are answered right away. For other requests, the
// chain runs first; a returned error (or a panic, as a [*cors.PanicError])
// is translated by the application's ErrorHandler, and CORS headers are
// then added to the response. If the error handler fails, its error is
// returned as is.
func New(m *cors.Middleware) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := c.Method()
		reqHdrs := requestHeader(c)
		if cors.IsPreflight(method, reqHdrs) {
			if res := m.Preflight(reqHdrs); res != nil {
				return send(c, res)
			}
			return c.Next()
		}
		if err := next(c); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				return herr
			}
		}
		resHdrs := make(http.Header)
		m.Inject(method, reqHdrs, resHdrs)
		for name, values := range resHdrs {
			if name == fiber.HeaderVary {
				for _, v := range values {
					c.Vary(v)
				}
				continue
			}
			c.Set(name, values[0])
		}
		return nil
	}
}

func next(c *fiber.Ctx) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &cors.PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return c.Next()
}

// requestHeader returns the headers of the request in c, keyed in
// canonical format.
func requestHeader(c *fiber.Ctx) http.Header {
	in := c.GetReqHeaders()
	hdrs := make(http.Header, len(in))
	for name, values := range in {
		key := http.CanonicalHeaderKey(name)
		hdrs[key] = append(hdrs[key], values...)
	}
	return hdrs
}

func send(c *fiber.Ctx, res *cors.Response) error {
	for name, values := range res.Header {
		c.Response().Header.Del(name)
		for _, v := range values {
			c.Response().Header.Add(name, v)
		}
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	return c.Status(status).Send(res.Body)
}

// ErrorHandler is a Fiber error handler. It answers a [*fiber.Error] as
// Fiber's default error handler does, and translates any other error with
// [cors.DefaultTranslator].
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(ferr.Code).SendString(ferr.Message)
	}
	res, terr := cors.DefaultTranslator(nil, err)
	if terr != nil {
		return terr
	}
	return send(c, res)
}
