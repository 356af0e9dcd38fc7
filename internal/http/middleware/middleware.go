package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/errs"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields []errs.FieldError `json:"fields,omitempty"`
}

var internalErrorResponse = ErrorResponse{
	Error: "Internal Server Error",
	Code:  errs.CodeInternal,
}

// Recovery is a middleware that recovers from panics and returns a 500 Internal Server Error
// instead of crashing the server.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("Panic recovered",
					slog.Any("error", err),
					slog.String("path", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, internalErrorResponse)
			}
		}()
		c.Next()
	}
}

// CORS allows browser clients from any origin. Preflight requests are answered directly.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		header.Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Logger writes one structured log line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("query", c.Request.URL.RawQuery),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		slog.LogAttrs(c.Request.Context(), level, "HTTP request", attrs...)
	}
}

// ErrorHandler renders the last error a handler attached with c.Error.
// Errors implementing errs.HTTPError keep their status and message; anything
// else is logged and reported as a 500 without leaking details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		httpErr, ok := errs.AsHTTPError(last.Err)
		if !ok {
			slog.Error("Unhandled request error",
				slog.Any("err", last.Err),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
			)
			c.JSON(http.StatusInternalServerError, internalErrorResponse)
			return
		}

		resp := ErrorResponse{
			Error: httpErr.Error(),
			Code:  httpErr.ErrorCode(),
		}
		var validationErr *errs.ValidationError
		if errors.As(httpErr, &validationErr) {
			resp.Fields = validationErr.Fields
		}
		c.JSON(httpErr.StatusCode(), resp)
	}
}
