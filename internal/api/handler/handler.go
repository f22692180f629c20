package handler

import (
	"examhub/backend/internal/service"
)

// Handler 所有 HTTP 处理器的聚合入口
type Handler struct {
	Booking      *BookingHandler
	Slot         *SlotHandler
	Shift        *ShiftHandler
	ClosedDate   *ClosedDateHandler
	Capacity     *CapacityHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Booking:      NewBookingHandler(svc.Booking),
		Slot:         NewSlotHandler(svc.Slot),
		Shift:        NewShiftHandler(svc.Shift),
		ClosedDate:   NewClosedDateHandler(svc.ClosedDate),
		Capacity:     NewCapacityHandler(svc.Capacity),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
	}
}
