package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"examhub/backend/internal/dto"
	"examhub/backend/internal/service"
	"examhub/backend/pkg/response"
)

// ClosedDateHandler 闭馆日期模块 HTTP 处理器
type ClosedDateHandler struct {
	closedDateSvc *service.ClosedDateService
}

// NewClosedDateHandler 创建 ClosedDateHandler
func NewClosedDateHandler(closedDateSvc *service.ClosedDateService) *ClosedDateHandler {
	return &ClosedDateHandler{closedDateSvc: closedDateSvc}
}

// List 查询日期范围内的闭馆日期
// GET /api/v1/closed-dates
func (h *ClosedDateHandler) List(c *gin.Context) {
	from := c.Query("date_from")
	to := c.Query("date_to")
	if from == "" || to == "" {
		response.BadRequest(c, 10001, "date_from 与 date_to 不能为空")
		return
	}

	dates, err := h.closedDateSvc.ListRange(c.Request.Context(), from, to)
	if err != nil {
		h.handleClosedDateError(c, err)
		return
	}

	response.OK(c, gin.H{"list": dates})
}

// Create 新增闭馆日期
// POST /api/v1/admin/closed-dates
func (h *ClosedDateHandler) Create(c *gin.Context) {
	var req dto.CreateClosedDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	cd, err := h.closedDateSvc.Create(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleClosedDateError(c, err)
		return
	}

	response.Created(c, cd)
}

// Delete 删除闭馆日期（重新开放该日期）
// DELETE /api/v1/admin/closed-dates/:id
func (h *ClosedDateHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "闭馆日期ID不能为空")
		return
	}

	if err := h.closedDateSvc.Delete(c.Request.Context(), id); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// handleClosedDateError 统一处理闭馆日期模块业务错误
func (h *ClosedDateHandler) handleClosedDateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDateAlreadyClosed):
		response.Conflict(c, 23001, "该日期已标记为闭馆")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, "日期格式不正确")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 23002, "日期范围不合法")
	default:
		response.InternalError(c)
	}
}
