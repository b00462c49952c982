package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-trust/internal/observability"
)

// GET /metrics
func Metrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4")
	if err := observability.Current().WritePrometheus(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
