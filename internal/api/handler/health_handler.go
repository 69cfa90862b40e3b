package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/birdnest/pkg/response"
)

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce plain
// @Success 200 {string} string "=)"
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	response.Success(c)
}
