package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/archivebot/internal/healthcheck"
)

// HealthHandler 健康检查 Handler
type HealthHandler struct {
	healthChecker *healthcheck.HealthChecker
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(healthChecker *healthcheck.HealthChecker) *HealthHandler {
	return &HealthHandler{
		healthChecker: healthChecker,
	}
}

// Liveness 服务存活检查，用于 Kubernetes liveness probe
func (h *HealthHandler) Liveness(c *gin.Context) {
	if h.healthChecker == nil {
		c.String(http.StatusOK, "ok")
		return
	}
	result := h.healthChecker.LivenessCheck()
	c.JSON(http.StatusOK, result)
}

// Readiness 服务就绪检查，检查依赖（队列、目录库）状态
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.healthChecker == nil {
		c.String(http.StatusOK, "ok")
		return
	}
	result := h.healthChecker.ReadinessCheck(c.Request.Context())
	if result.Status == "error" {
		c.JSON(http.StatusServiceUnavailable, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
