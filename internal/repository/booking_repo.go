package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"examhub/backend/internal/model"
	pkgerrors "examhub/backend/pkg/errors"
)

// BookingRepository 预约数据访问接口
// 所有状态转移都通过 UpdateStatus 的条件更新完成：
// WHERE booking_id = ? AND status IN (前置状态集)，RowsAffected=0 视为并发竞争失败
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// GetActiveByDepartment 查询部门当前的非终态预约
	GetActiveByDepartment(ctx context.Context, departmentID string) (*model.Booking, error)
	// UpdateStatus 条件状态更新（CAS）；updates 为随状态一同写入的字段
	UpdateStatus(ctx context.Context, id string, from []model.BookingStatus, to model.BookingStatus, updates map[string]interface{}) error
	// UpdateVoucherStatus 凭证子状态的条件更新（预约状态本身不变）
	UpdateVoucherStatus(ctx context.Context, id string, from []model.VoucherStatus, to model.VoucherStatus, updates map[string]interface{}) error
	// MarkReminderSent 设置考前提醒幂等标记；已被标记过时返回 ErrStatusConflict
	MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error
	ListByDepartment(ctx context.Context, departmentID string) ([]model.Booking, error)
	List(ctx context.Context, status *model.BookingStatus, from, to *time.Time, offset, limit int) ([]model.Booking, int64, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	// ListOverdueHolding 查询占位已到期（含恰好到期）的预约
	ListOverdueHolding(ctx context.Context, now time.Time) ([]model.Booking, error)
	ListApprovedByExamDate(ctx context.Context, date time.Time) ([]model.Booking, error)
	// SumCandidates 统计同一日期同一粒度上指定状态预约的考生总数；exclude 排除某一预约自身
	SumCandidates(ctx context.Context, date time.Time, shiftID string, hour *int, statuses []model.BookingStatus, excludeID string) (int, error)
}

type bookingRepo struct {
	db *gorm.DB
}

func NewBookingRepo(db *gorm.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("booking_id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepo) GetActiveByDepartment(ctx context.Context, departmentID string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("department_id = ? AND status NOT IN ?", departmentID, model.TerminalStatuses).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, id string, from []model.BookingStatus, to model.BookingStatus, updates map[string]interface{}) error {
	values := map[string]interface{}{"status": to}
	for k, v := range updates {
		values[k] = v
	}
	result := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("booking_id = ? AND status IN ?", id, from).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStatusConflict
	}
	return nil
}

func (r *bookingRepo) UpdateVoucherStatus(ctx context.Context, id string, from []model.VoucherStatus, to model.VoucherStatus, updates map[string]interface{}) error {
	values := map[string]interface{}{"voucher_status": to}
	for k, v := range updates {
		values[k] = v
	}
	result := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("booking_id = ? AND voucher_status IN ?", id, from).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStatusConflict
	}
	return nil
}

func (r *bookingRepo) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("booking_id = ? AND reminder_sent_at IS NULL", id).
		Update("reminder_sent_at", sentAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStatusConflict
	}
	return nil
}

func (r *bookingRepo) ListByDepartment(ctx context.Context, departmentID string) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("department_id = ?", departmentID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) List(ctx context.Context, status *model.BookingStatus, from, to *time.Time, offset, limit int) ([]model.Booking, int64, error) {
	var bookings []model.Booking
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Booking{})
	if status != nil {
		db = db.Where("status = ?", *status)
	}
	if from != nil {
		db = db.Where("exam_date >= ?", from.Format("2006-01-02"))
	}
	if to != nil {
		db = db.Where("exam_date <= ?", to.Format("2006-01-02"))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Shift").
		Offset(offset).Limit(limit).
		Order("exam_date ASC, created_at ASC").
		Find(&bookings).Error
	return bookings, total, err
}

func (r *bookingRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("exam_date >= ? AND exam_date <= ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("exam_date ASC, exam_start_hour ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) ListOverdueHolding(ctx context.Context, now time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND hold_expires_at <= ?", model.StatusHolding, now).
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) ListApprovedByExamDate(ctx context.Context, date time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("status = ? AND exam_date = ?", model.StatusApproved, date.Format("2006-01-02")).
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) SumCandidates(ctx context.Context, date time.Time, shiftID string, hour *int, statuses []model.BookingStatus, excludeID string) (int, error) {
	var sum int64
	db := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("exam_date = ? AND shift_id = ? AND status IN ?", date.Format("2006-01-02"), shiftID, statuses)
	if hour != nil {
		// 小时粒度统计时，整场预约同样占用该小时的容量
		db = db.Where("(exam_start_hour = ? OR exam_start_hour IS NULL)", *hour)
	}
	if excludeID != "" {
		db = db.Where("booking_id != ?", excludeID)
	}
	err := db.Select("COALESCE(SUM(candidate_count), 0)").Scan(&sum).Error
	return int(sum), err
}
