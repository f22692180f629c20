package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"examhub/backend/internal/dto"
	"examhub/backend/internal/service"
	"examhub/backend/pkg/response"
)

// CapacityHandler 容量模块 HTTP 处理器
type CapacityHandler struct {
	capacitySvc *service.CapacityService
}

// NewCapacityHandler 创建 CapacityHandler
func NewCapacityHandler(capacitySvc *service.CapacityService) *CapacityHandler {
	return &CapacityHandler{capacitySvc: capacitySvc}
}

// Availability 查询日期范围内的小时级剩余容量
// GET /api/v1/capacity/availability
func (h *CapacityHandler) Availability(c *gin.Context) {
	var q dto.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	from, err := time.Parse("2006-01-02", q.DateFrom)
	if err != nil {
		response.BadRequest(c, 10001, "日期格式不正确")
		return
	}
	to, err := time.Parse("2006-01-02", q.DateTo)
	if err != nil {
		response.BadRequest(c, 10001, "日期格式不正确")
		return
	}

	list, err := h.capacitySvc.RangeAvailability(c.Request.Context(), from, to, q.ShiftID)
	if err != nil {
		h.handleCapacityError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ReplaceRoster 整批替换排班容量
// PUT /api/v1/admin/capacity/roster
func (h *CapacityHandler) ReplaceRoster(c *gin.Context) {
	var req dto.ReplaceRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rows, err := h.capacitySvc.ReplaceRoster(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleCapacityError(c, err)
		return
	}

	response.OK(c, gin.H{"rows": rows})
}

// handleCapacityError 统一处理容量模块业务错误
func (h *CapacityHandler) handleCapacityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 24003, "日期范围不合法")
	case errors.Is(err, service.ErrRosterRowOutOfRange):
		response.BadRequest(c, 24004, "排班行日期超出替换范围")
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 22001, "场次不存在")
	default:
		response.InternalError(c)
	}
}
