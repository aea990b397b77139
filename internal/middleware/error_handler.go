package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"caixapos/internal/apierror"
)

// Logger emits one structured line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Error()
		} else if c.Writer.Status() >= 400 {
			event = log.Warn()
		}
		event.
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// Recovery converts panics into a 500 without leaking internals.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("request_id", GetRequestID(c)).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					apierror.New("Erro interno do servidor"))
			}
		}()
		c.Next()
	}
}

// ErrorHandler turns errors attached via c.Error into the canonical JSON
// envelope. Handlers that already wrote a body (partial failures) are left
// alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var vErr *apierror.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusUnprocessableEntity, vErr)
			return
		}

		status := apierror.HTTPStatus(err)
		var typed *apierror.Error
		if errors.As(err, &typed) {
			if typed.Kind == apierror.KindUpstream {
				log.Error().Err(typed.Err).
					Str("request_id", GetRequestID(c)).
					Str("step", typed.Step).
					Msg("upstream failure")
			}
			c.JSON(status, apierror.APIError{Detail: typed.Detail, Step: typed.Step})
			return
		}

		log.Error().Err(err).Str("request_id", GetRequestID(c)).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
	}
}
