package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader is the HTTP header used for request tracing.
// An incoming value is reused; otherwise a new UUID is generated.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

type ctxKey struct{}

func newRequestID(incoming string) string {
	if incoming != "" {
		return incoming
	}
	return uuid.New().String()
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := newRequestID(r.Header.Get(RequestIDHeader))
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), ctxKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestIDFrom returns the request ID stored in ctx, if any.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func ginRequestID(c *gin.Context) {
	id := newRequestID(c.GetHeader(RequestIDHeader))
	c.Set(requestIDKey, id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

func fiberRequestID(c *fiber.Ctx) error {
	id := newRequestID(c.Get(RequestIDHeader))
	c.Locals(requestIDKey, id)
	c.Set(RequestIDHeader, id)
	return c.Next()
}
