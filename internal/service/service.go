package service

import (
	"time"

	"go.uber.org/zap"

	"examhub/backend/config"
	"examhub/backend/internal/repository"
)

// Service 所有业务服务的聚合入口
type Service struct {
	Calendar     *CalendarService
	Capacity     *CapacityService
	Slot         *SlotService
	Booking      *BookingService
	Notification *NotificationService
	Shift        *ShiftService
	ClosedDate   *ClosedDateService
	Export       *ExportService
}

// NewService 创建 Service 聚合
// broadcaster 可为 nil（未启用 Redis 时事件广播静默跳过）
func NewService(repo *repository.Repository, cfg *config.Config, broadcaster EventBroadcaster, logger *zap.Logger) (*Service, error) {
	loc, err := cfg.Booking.Location()
	if err != nil {
		return nil, err
	}
	return newServiceWithLocation(repo, cfg, broadcaster, logger, loc), nil
}

func newServiceWithLocation(repo *repository.Repository, cfg *config.Config, broadcaster EventBroadcaster, logger *zap.Logger, loc *time.Location) *Service {
	calendar := NewCalendarService(repo.ClosedDate)
	capacity := NewCapacityService(repo, &cfg.Booking, logger)
	notifier := NewNotificationService(repo, &cfg.Booking, logger)

	return &Service{
		Calendar:     calendar,
		Capacity:     capacity,
		Slot:         NewSlotService(repo, &cfg.Booking, loc, calendar, capacity, logger),
		Booking:      NewBookingService(repo, &cfg.Booking, loc, calendar, capacity, notifier, broadcaster, logger),
		Notification: notifier,
		Shift:        NewShiftService(repo, logger),
		ClosedDate:   NewClosedDateService(repo, logger),
		Export:       NewExportService(repo, &cfg.Booking, loc, logger),
	}
}
