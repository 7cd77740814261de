package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger writes one structured line per request. Report downloads also
// carry the requested format, the page count and the payload type.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		event := levelFor(status)
		if len(c.Errors) > 0 {
			event = event.Err(c.Errors.Last().Err)
		}

		if key := c.Param("periodKey"); key != "" {
			event = event.Str("period", key)
		}
		if format, ok := c.GetQuery("format"); ok {
			event = event.Str("format", format)
		}
		if pages, err := strconv.Atoi(c.Writer.Header().Get("X-Report-Pages")); err == nil {
			event = event.Int("pages", pages).
				Str("content_type", c.Writer.Header().Get("Content-Type"))
		}

		event.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Int("bytes", c.Writer.Size()).
			Msg("request")
	}
}

func levelFor(status int) *zerolog.Event {
	switch {
	case status >= 500:
		return log.Error()
	case status >= 400:
		return log.Warn()
	}
	return log.Info()
}
