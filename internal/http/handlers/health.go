package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"openai-image-gateway/internal/models"
)

const version = "1.0.0"

// HealthCheck reports local liveness plus upstream and storage reachability.
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	services := h.storage.HealthCheck(c.Request.Context())
	services["openai"] = h.service.CheckStatus(c.Request.Context())

	status := "healthy"
	if services["openai"] != "healthy" {
		status = "degraded"
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   version,
		Services:  services,
	})
}
