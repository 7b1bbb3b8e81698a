// Package middleware holds the gin middleware the HTTP layer installs on
// every route: a request id and a structured-enough access log line. The
// teacher's own stack never reaches for a logging library, so this keeps
// using the standard log package rather than introducing one.
package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header a client can set to propagate its own
// request id; one is generated when absent.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID stamps every request with an id, echoed back in the response
// header and available to handlers via RequestIDFrom.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFrom extracts the request id stamped by RequestID.
func RequestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Logger writes one line per request: method, path, status, latency, and
// the request id, once the handler chain has finished.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Printf("[%s] %s %s %d %s",
			RequestIDFrom(c), c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
