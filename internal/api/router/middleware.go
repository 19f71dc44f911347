package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/jobboard/internal/api/handler"
)

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		attrs := []any{
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
			slog.Int("body_size", c.Writer.Size()),
		}
		if u := handler.CurrentUser(c); u != nil {
			attrs = append(attrs, slog.String("user_id", u.ID))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("HTTP Request", attrs...)
		case status >= 400:
			logger.Warn("HTTP Request", attrs...)
		default:
			logger.Info("HTTP Request", attrs...)
		}

		for _, e := range c.Errors {
			logger.Error("Request error",
				slog.String("error", e.Error()),
				slog.Uint64("type", uint64(e.Type)),
			)
		}
	}
}

// CORSMiddleware allows the configured origins, or every origin when none are configured
func CORSMiddleware(origins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	config.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	config.AddAllowHeaders("Authorization", "User-Device")
	config.MaxAge = 12 * time.Hour
	return cors.New(config)
}
