package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Shift          ShiftRepository
	ClosedDate     ClosedDateRepository
	Capacity       CapacityRepository
	Booking        BookingRepository
	BookingHistory BookingHistoryRepository
	Notification   NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Shift:          NewShiftRepo(db),
		ClosedDate:     NewClosedDateRepo(db),
		Capacity:       NewCapacityRepo(db),
		Booking:        NewBookingRepo(db),
		BookingHistory: NewBookingHistoryRepo(db),
		Notification:   NewNotificationRepo(db),
	}
}
