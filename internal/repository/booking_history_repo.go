package repository

import (
	"context"

	"gorm.io/gorm"

	"examhub/backend/internal/model"
)

// BookingHistoryRepository 预约审计日志数据访问接口（只追加）
type BookingHistoryRepository interface {
	Create(ctx context.Context, entry *model.BookingHistory) error
	ListByBooking(ctx context.Context, bookingID string) ([]model.BookingHistory, error)
}

type bookingHistoryRepo struct {
	db *gorm.DB
}

func NewBookingHistoryRepo(db *gorm.DB) BookingHistoryRepository {
	return &bookingHistoryRepo{db: db}
}

func (r *bookingHistoryRepo) Create(ctx context.Context, entry *model.BookingHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *bookingHistoryRepo) ListByBooking(ctx context.Context, bookingID string) ([]model.BookingHistory, error) {
	var entries []model.BookingHistory
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
