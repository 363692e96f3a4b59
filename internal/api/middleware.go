package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Alias1177/HeartGuard/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const sessionKey = "session"

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := zerolog.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zerolog.WarnLevel
		}
		logger.WithLevel(level).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("Request handled")
	}
}

func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func rateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}

func (h *Handler) recovered(c *gin.Context, err any) {
	h.logger.Error().Interface("panic", err).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// loadSession puts the caller's *session.Session on the context when the
// cookie names a live session
func (h *Handler) loadSession(c *gin.Context) {
	if h.deps.Sessions == nil {
		c.Next()
		return
	}
	id, err := c.Cookie(SessionCookie)
	if err == nil && id != "" {
		if s, ok := h.deps.Sessions.Get(id); ok {
			c.Set(sessionKey, s)
		}
	}
	c.Next()
}

func (h *Handler) requireSession(c *gin.Context) {
	if currentSession(c) == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}

func currentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
