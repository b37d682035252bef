package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/promptdeck/promptdeck/app/core"
	v1 "github.com/promptdeck/promptdeck/app/logic/v1"
	"github.com/promptdeck/promptdeck/app/response"
	"github.com/promptdeck/promptdeck/pkg/errors"
)

const (
	ACCESS_TOKEN_HEADER_KEY = "X-Access-Token"
)

func Cors(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, "+ACCESS_TOKEN_HEADER_KEY)

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

type ApiMetrics interface {
	ApiResponseTimer(api string) *prometheus.Timer
	ApiErrorInc(method, api string, status int)
}

// Observe records per-route response latency and counts non-2xx replies.
func Observe(m ApiMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := m.ApiResponseTimer(c.FullPath())
		c.Next()
		timer.ObserveDuration()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			m.ApiErrorInc(c.Request.Method, c.FullPath(), status)
		}
	}
}

// Authorization resolves the access token header to its owner. The token
// record and the user id land in the request context for the handlers.
func Authorization(core *core.Core) gin.HandlerFunc {
	tracePrefix := "middleware.Authorization"
	return func(c *gin.Context) {
		tokenValue := c.GetHeader(ACCESS_TOKEN_HEADER_KEY)
		if tokenValue == "" {
			unauthorized(c)
			return
		}

		token, err := core.Store().AccessTokenStore().GetByToken(c.Request.Context(), tokenValue)
		if err != nil {
			if errors.IsNotFound(err) {
				unauthorized(c)
				return
			}
			response.APIError(c, errors.Trace(tracePrefix+".AccessTokenStore.GetByToken", err))
			return
		}

		if token.ExpiresAt < time.Now().Unix() {
			unauthorized(c)
			return
		}

		c.Set("user", token.UserID)
		c.Set(v1.TOKEN_CONTEXT_KEY, *token)
	}
}

func unauthorized(c *gin.Context) {
	c.Abort()
	res := c.MustGet(response.ResponseKey).(*response.Response)
	res.Meta.Code = http.StatusUnauthorized
	res.Meta.Message = "unauthorized"
	c.JSON(http.StatusUnauthorized, res)
}
