package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/archivebot/internal/observe"
)

// StatusHandler 归档器状态 Handler
type StatusHandler struct {
	sink *observe.Sink
}

// NewStatusHandler 创建 StatusHandler
func NewStatusHandler(sink *observe.Sink) *StatusHandler {
	return &StatusHandler{sink: sink}
}

// GetStatus 返回归档器当前状态与工作集大小
func (h *StatusHandler) GetStatus(c *gin.Context) {
	if h.sink == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "状态接收端未初始化"})
		return
	}
	c.JSON(http.StatusOK, h.sink.Snapshot())
}
