package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"examhub/backend/internal/dto"
	"examhub/backend/internal/service"
	"examhub/backend/pkg/response"
)

// ShiftHandler 场次模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc *service.ShiftService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// List 获取场次列表
// GET /api/v1/shifts
func (h *ShiftHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true" && IsAdmin(c)

	shifts, err := h.shiftSvc.List(c.Request.Context(), includeInactive)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}

// Get 获取场次详情
// GET /api/v1/shifts/:id
func (h *ShiftHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "场次ID不能为空")
		return
	}

	shift, err := h.shiftSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// Create 创建场次
// POST /api/v1/admin/shifts
func (h *ShiftHandler) Create(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Create(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, shift)
}

// Update 更新场次
// PUT /api/v1/admin/shifts/:id
func (h *ShiftHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "场次ID不能为空")
		return
	}

	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Update(c.Request.Context(), id, &req, adminID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// handleShiftError 统一处理场次模块业务错误
func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 22001, "场次不存在")
	case errors.Is(err, service.ErrShiftNameTaken):
		response.Conflict(c, 22002, "同名场次已存在")
	case errors.Is(err, service.ErrShiftInactive):
		response.BadRequest(c, 22003, "场次已停用")
	case errors.Is(err, service.ErrShiftHoursInvalid):
		response.BadRequest(c, 22004, "场次时间范围不合法")
	default:
		response.InternalError(c)
	}
}
