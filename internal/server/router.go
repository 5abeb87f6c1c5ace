package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/azhengyongqin/archivebot/internal/healthcheck"
	"github.com/azhengyongqin/archivebot/internal/middleware"
	"github.com/azhengyongqin/archivebot/internal/observe"
	"github.com/azhengyongqin/archivebot/internal/server/handler"
)

type Deps struct {
	// Sink 归档器状态快照来源
	Sink *observe.Sink

	// HealthChecker 健康检查器
	HealthChecker *healthcheck.HealthChecker
}

// NewRouter 提供运维用 Gin HTTP 接口：健康检查、指标与归档器状态
func NewRouter(deps Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	// 全局中间件
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.PrometheusMiddleware())

	healthHandler := handler.NewHealthHandler(deps.HealthChecker)
	statusHandler := handler.NewStatusHandler(deps.Sink)

	// 健康检查路由
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Prometheus metrics 端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.GET("/status", statusHandler.GetStatus)
	}

	return r
}
