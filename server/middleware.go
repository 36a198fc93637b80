package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"szpion/api"
	"szpion/utils"
)

const requestIDHeader = "X-Request-ID"

// requestLogger はリクエストIDを割り当て、リクエストごとにアクセスログを出力します
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(utils.ContextWithRequestID(c.Request.Context(), id))

		start := time.Now()
		c.Next()

		utils.FromContext(c.Request.Context()).WithFields(utils.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": float64(time.Since(start).Nanoseconds()) / 1e6,
		}).Info("request")
	}
}

// errorTranslator はハンドラーが登録したエラーをHTTPステータスに変換します
func errorTranslator() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := StatusFor(err)

		entry := utils.FromContext(c.Request.Context()).WithError(err).WithField("status", status)
		if status >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Warn("request failed")
		}

		c.AbortWithStatusJSON(status, gin.H{"error": clientMessage(err, status)})
	}
}

// clientMessage はクライアントへ返すエラーメッセージです
// JIRAのレスポンス本文はログにのみ出力し、レスポンスには含めません
func clientMessage(err error, status int) string {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return http.StatusText(status)
	}
	if apiErr.Op == "" {
		return apiErr.Kind.String()
	}
	return apiErr.Op + ": " + apiErr.Kind.String()
}

// StatusFor はエラー種別に対応するHTTPステータスを返します
func StatusFor(err error) int {
	switch api.KindOf(err) {
	case api.KindUpstreamNotFound:
		return http.StatusNotFound
	case api.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case api.KindUpstreamProtocol:
		return http.StatusBadGateway
	case api.KindFixtureInvalid:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
