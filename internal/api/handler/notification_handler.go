package handler

import (
	"github.com/gin-gonic/gin"

	"examhub/backend/internal/dto"
	"examhub/backend/internal/service"
	"examhub/backend/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
type NotificationHandler struct {
	notificationSvc *service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// List 查询当前用户的通知
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var q dto.ListNotificationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, total, err := h.notificationSvc.ListByUser(c.Request.Context(), userID, q.Page, q.PageSize)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, q.Page, q.PageSize)
}

// MarkRead 标记通知已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "通知ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), id, userID); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
