package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"examhub/backend/internal/service"
	"examhub/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc *service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc *service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportBookings 导出预约明细 Excel
// GET /api/v1/admin/export/bookings
func (h *ExportHandler) ExportBookings(c *gin.Context) {
	from := c.Query("date_from")
	to := c.Query("date_to")
	if from == "" || to == "" {
		response.BadRequest(c, 10001, "date_from 与 date_to 不能为空")
		return
	}

	f, err := h.exportSvc.ExportBookings(c.Request.Context(), from, to)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	filename := fmt.Sprintf("bookings_%s_%s.xlsx", from, to)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// CalendarFeed 已通过预约的 iCal 日历
// GET /api/v1/admin/export/calendar
func (h *ExportHandler) CalendarFeed(c *gin.Context) {
	from := c.Query("date_from")
	to := c.Query("date_to")
	if from == "" || to == "" {
		response.BadRequest(c, 10001, "date_from 与 date_to 不能为空")
		return
	}

	feed, err := h.exportSvc.ICalFeed(c.Request.Context(), from, to)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Type", "text/calendar; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="exams.ics"`)
	c.String(http.StatusOK, feed)
}

// handleExportError 统一处理导出模块业务错误
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, "日期格式不正确")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 26001, "日期范围不合法")
	default:
		response.InternalError(c)
	}
}
