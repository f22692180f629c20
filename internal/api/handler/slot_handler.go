package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"examhub/backend/internal/dto"
	"examhub/backend/internal/service"
	"examhub/backend/pkg/response"
)

// SlotHandler 时段搜索 HTTP 处理器
type SlotHandler struct {
	slotSvc *service.SlotService
}

// NewSlotHandler 创建 SlotHandler
func NewSlotHandler(slotSvc *service.SlotService) *SlotHandler {
	return &SlotHandler{slotSvc: slotSvc}
}

// Search 搜索可用时段
// GET /api/v1/slots/search
func (h *SlotHandler) Search(c *gin.Context) {
	var req dto.SearchSlotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	// 部门用户只能以本部门身份搜索；管理员需显式指定部门
	if !IsAdmin(c) {
		deptID, ok := MustGetDepartmentID(c)
		if !ok {
			return
		}
		req.DepartmentID = deptID
	}
	if req.DepartmentID == "" {
		response.BadRequest(c, 10001, "缺少 department_id")
		return
	}

	result, err := h.slotSvc.Search(c.Request.Context(), &req)
	if err != nil {
		var schedErr *service.AlreadyScheduledError
		switch {
		case errors.As(err, &schedErr):
			response.ErrorWithData(c, http.StatusConflict, 21001,
				"该部门已有未完成的预约", toBookingResponse(schedErr.Existing))
		case errors.Is(err, service.ErrInvalidDate):
			response.BadRequest(c, 10001, "日期格式不正确")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
